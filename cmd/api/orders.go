package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"valuefind/internal/notifications"
	"valuefind/internal/roles"
	"valuefind/internal/store"

	"github.com/go-chi/chi/v5"
)

type OrderItemPayload struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0,lte=100"`
}

type CreateOrderPayload struct {
	Pincode string             `json:"pincode" validate:"required,pincode"`
	Items   []OrderItemPayload `json:"items" validate:"required,min=1,max=50,dive"`
}

// createOrderHandler godoc
//
//	@Summary		Place an order
//	@Description	Places an order for delivery to a serviced pincode. Item names and prices are snapshotted at order time.
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			payload	body		CreateOrderPayload	true	"Pincode and items"
//	@Success		201		{object}	store.Order
//	@Failure		400		{object}	error
//	@Router			/customer/orders [post]
func (app *application) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	account := getAccountFromContext(r)

	var payload CreateOrderPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	territory, err := app.store.Territories.GetByPincode(ctx, payload.Pincode)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.badRequestResponse(w, r, fmt.Errorf("pincode %s is not serviced", payload.Pincode))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}
	if !territory.IsActive {
		app.badRequestResponse(w, r, fmt.Errorf("pincode %s is not serviced", payload.Pincode))
		return
	}

	var (
		items []store.OrderItem
		total int64
	)
	for _, item := range payload.Items {
		product, err := app.store.Products.GetByID(ctx, item.ProductID)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				app.badRequestResponse(w, r, fmt.Errorf("product %d does not exist", item.ProductID))
			default:
				app.internalServerError(w, r, err)
			}
			return
		}
		if !product.IsActive {
			app.badRequestResponse(w, r, fmt.Errorf("product %d is not available", item.ProductID))
			return
		}
		if product.Stock < item.Quantity {
			app.badRequestResponse(w, r, fmt.Errorf("product %d has insufficient stock", item.ProductID))
			return
		}

		items = append(items, store.OrderItem{
			ProductID:  product.ID,
			Name:       product.Name,
			Quantity:   item.Quantity,
			PricePaise: product.PricePaise,
		})
		total += product.PricePaise * int64(item.Quantity)
	}

	number, err := app.orderNumbers.Next()
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	order := &store.Order{
		Number:     number,
		CustomerID: account.ID,
		Pincode:    payload.Pincode,
		Status:     store.OrderPlaced,
		TotalPaise: total,
		Items:      items,
	}

	if err := app.store.Orders.Create(ctx, order); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, order); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listMyOrdersHandler godoc
//
//	@Summary		List my orders
//	@Tags			orders
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{array}	store.Order
//	@Router			/customer/orders [get]
func (app *application) listMyOrdersHandler(w http.ResponseWriter, r *http.Request) {
	account := getAccountFromContext(r)

	orders, err := app.store.Orders.ListByCustomer(r.Context(), account.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, orders); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listDeliveryOrdersHandler godoc
//
//	@Summary		List orders in my assigned pincodes
//	@Description	Defaults to dispatched orders waiting on delivery, filterable by status
//	@Tags			orders
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			status	query	string	false	"Order status"	default(dispatched)
//	@Success		200		{array}	store.Order
//	@Router			/delivery/orders [get]
func (app *application) listDeliveryOrdersHandler(w http.ResponseWriter, r *http.Request) {
	account := getAccountFromContext(r)

	status := r.URL.Query().Get("status")
	if status == "" {
		status = store.OrderDispatched
	}
	if !validOrderStatus(status) {
		app.badRequestResponse(w, r, fmt.Errorf("unknown order status %q", status))
		return
	}

	entry, ok := account.Roles[roles.DeliveryPartner]
	if !ok || entry.Metadata.Delivery == nil || len(entry.Metadata.Delivery.AssignedPincodes) == 0 {
		app.jsonResponse(w, http.StatusOK, []store.Order{})
		return
	}

	orders, err := app.store.Orders.ListByPincodes(r.Context(), status, entry.Metadata.Delivery.AssignedPincodes)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, orders); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateOrderStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

// statusTransitions maps each role to the transitions it may perform.
// Admins may force any forward transition.
var statusTransitions = map[roles.Kind]map[string][]string{
	roles.StoreOwner: {
		store.OrderPlaced:   {store.OrderAccepted, store.OrderCancelled},
		store.OrderAccepted: {store.OrderDispatched, store.OrderCancelled},
	},
	roles.DeliveryPartner: {
		store.OrderDispatched: {store.OrderDelivered},
	},
	roles.PlatformAdmin: {
		store.OrderPlaced:     {store.OrderAccepted, store.OrderDispatched, store.OrderDelivered, store.OrderCancelled},
		store.OrderAccepted:   {store.OrderDispatched, store.OrderDelivered, store.OrderCancelled},
		store.OrderDispatched: {store.OrderDelivered, store.OrderCancelled},
	},
}

// updateOrderStatusHandler godoc
//
//	@Summary		Advance an order's status
//	@Description	Moves the order forward in its lifecycle. Allowed transitions depend on the session's active role.
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			orderID	path		int							true	"Order ID"
//	@Param			payload	body		UpdateOrderStatusPayload	true	"Target status"
//	@Success		200		{object}	store.Order
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Failure		409		{object}	error
//	@Router			/store/orders/{orderID}/status [patch]
func (app *application) updateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	account := getAccountFromContext(r)

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateOrderStatusPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if !validOrderStatus(payload.Status) {
		app.badRequestResponse(w, r, fmt.Errorf("unknown order status %q", payload.Status))
		return
	}

	ctx := r.Context()

	order, err := app.store.Orders.GetByID(ctx, orderID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if !app.canActOnOrder(ctx, w, r, account, order) {
		return
	}

	if !transitionAllowed(account.CurrentRole, order.Status, payload.Status) {
		app.conflictResponse(w, r, fmt.Errorf("cannot move order from %s to %s", order.Status, payload.Status))
		return
	}

	if err := app.store.Orders.UpdateStatus(ctx, order.ID, payload.Status); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}
	order.Status = payload.Status

	if err := notifications.SendOrderStatus(ctx, app.push, app.store.PushTokens, order); err != nil {
		app.logger.Errorw("error sending order push", "order", order.Number, "error", err)
	}

	if err := app.jsonResponse(w, http.StatusOK, order); err != nil {
		app.internalServerError(w, r, err)
	}
}

// canActOnOrder scopes status changes to the caller. A store owner may only
// touch orders made up of their own products, a delivery partner only orders
// in their assigned pincodes. Orders outside that scope read as absent rather
// than forbidden, same as product lookups. Writes the response on denial.
func (app *application) canActOnOrder(ctx context.Context, w http.ResponseWriter, r *http.Request, account *store.Account, order *store.Order) bool {
	switch account.CurrentRole {
	case roles.PlatformAdmin:
		return true
	case roles.StoreOwner:
		for _, item := range order.Items {
			product, err := app.store.Products.GetByID(ctx, item.ProductID)
			if err != nil {
				switch {
				case errors.Is(err, store.ErrNotFound):
					app.notFoundResponse(w, r, store.ErrNotFound)
				default:
					app.internalServerError(w, r, err)
				}
				return false
			}
			if product.OwnerID != account.ID {
				app.notFoundResponse(w, r, store.ErrNotFound)
				return false
			}
		}
		return true
	case roles.DeliveryPartner:
		entry, ok := account.Roles[roles.DeliveryPartner]
		if ok && entry.Metadata.Delivery != nil {
			for _, pincode := range entry.Metadata.Delivery.AssignedPincodes {
				if pincode == order.Pincode {
					return true
				}
			}
		}
		app.notFoundResponse(w, r, store.ErrNotFound)
		return false
	}
	app.notFoundResponse(w, r, store.ErrNotFound)
	return false
}

func validOrderStatus(status string) bool {
	switch status {
	case store.OrderPlaced, store.OrderAccepted, store.OrderDispatched, store.OrderDelivered, store.OrderCancelled:
		return true
	}
	return false
}

func transitionAllowed(role roles.Kind, from, to string) bool {
	allowed, ok := statusTransitions[role]
	if !ok {
		return false
	}
	for _, next := range allowed[from] {
		if next == to {
			return true
		}
	}
	return false
}
