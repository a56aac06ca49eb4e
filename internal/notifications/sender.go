package notifications

import (
	"context"

	"github.com/9ssi7/exponent"
)

// PushSender abstracts a push provider; tied to the exponent SDK types.
type PushSender interface {
	Publish(ctx context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error)
	PublishSingle(ctx context.Context, msg *exponent.Message) ([]*exponent.MessageResponse, error)
}

// TokenSource yields the push tokens registered for an account.
type TokenSource interface {
	ListByAccount(ctx context.Context, accountID string) ([]string, error)
}

func sendToAccount(ctx context.Context, push PushSender, tokens TokenSource, accountID, title, body string, data map[string]string) error {
	registered, err := tokens.ListByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if len(registered) == 0 {
		// Nothing registered, not an error worth surfacing to callers.
		return nil
	}

	msgs := make([]*exponent.Message, 0, len(registered))
	for _, t := range registered {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data:  data,
		})
	}

	_, err = push.Publish(ctx, msgs)
	return err
}
