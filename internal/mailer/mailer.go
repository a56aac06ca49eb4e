package mailer

import "embed"

const (
	FromName              = "ValueFind"
	maxRetries            = 3
	OTPCodeTemplate       = "otp_code.tmpl"
	ResetPasswordTemplate = "reset_password.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
