package notifications

import (
	"context"

	"github.com/9ssi7/exponent"
)

// ExpoAdapter delivers verification decisions and order updates through the
// hosted Expo push service. Handlers depend on PushSender so tests can swap
// the client out.
type ExpoAdapter struct {
	client *exponent.Client
}

func NewExpoAdapter(client *exponent.Client) *ExpoAdapter {
	return &ExpoAdapter{client: client}
}

// Publish sends a batch of messages, one per registered device token.
func (a *ExpoAdapter) Publish(ctx context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error) {
	return a.client.Publish(ctx, msgs)
}

func (a *ExpoAdapter) PublishSingle(ctx context.Context, msg *exponent.Message) ([]*exponent.MessageResponse, error) {
	return a.client.PublishSingle(ctx, msg)
}
