package notifications

import (
	"context"
	"fmt"

	"valuefind/internal/store"
)

// SendOrderStatus notifies the customer when their order advances.
func SendOrderStatus(ctx context.Context, push PushSender, tokens TokenSource, order *store.Order) error {
	var title, body string
	switch order.Status {
	case store.OrderAccepted:
		title = "Order accepted"
		body = fmt.Sprintf("Order %s has been accepted by the store.", order.Number)
	case store.OrderDispatched:
		title = "Order dispatched"
		body = fmt.Sprintf("Order %s is on its way.", order.Number)
	case store.OrderDelivered:
		title = "Order delivered"
		body = fmt.Sprintf("Order %s was delivered. Thanks for shopping!", order.Number)
	case store.OrderCancelled:
		title = "Order cancelled"
		body = fmt.Sprintf("Order %s was cancelled.", order.Number)
	default:
		return nil
	}

	return sendToAccount(ctx, push, tokens, order.CustomerID, title, body, map[string]string{
		"type":   "order",
		"number": order.Number,
		"status": order.Status,
	})
}
