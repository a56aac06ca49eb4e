package notifications

import (
	"context"
	"fmt"

	"valuefind/internal/roles"
)

// SendVerificationDecision tells an account that one of its roles moved
// through KYC review. Only decisions worth interrupting for (verified,
// rejected, under review) produce a push.
func SendVerificationDecision(ctx context.Context, push PushSender, tokens TokenSource, accountID string, kind roles.Kind, state roles.VerificationState) error {
	var title, body string
	switch state {
	case roles.VerificationVerified:
		title = "Verification approved"
		body = fmt.Sprintf("Your %s profile is now verified.", roleLabel(kind))
	case roles.VerificationRejected:
		title = "Verification rejected"
		body = fmt.Sprintf("Your %s verification was rejected. Check your documents and resubmit.", roleLabel(kind))
	case roles.VerificationUnderReview:
		title = "Verification in review"
		body = fmt.Sprintf("Your %s documents are being reviewed.", roleLabel(kind))
	default:
		return nil
	}

	return sendToAccount(ctx, push, tokens, accountID, title, body, map[string]string{
		"type":  "verification",
		"role":  string(kind),
		"state": string(state),
	})
}

func roleLabel(kind roles.Kind) string {
	switch kind {
	case roles.StoreOwner:
		return "store owner"
	case roles.DeliveryPartner:
		return "delivery partner"
	case roles.TerritoryOperator:
		return "territory operator"
	case roles.PlatformAdmin:
		return "platform admin"
	default:
		return "customer"
	}
}
