package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"valuefind/internal/roles"
	"valuefind/internal/store"

	"github.com/go-chi/chi/v5"
)

func TestTransitionAllowed(t *testing.T) {
	tests := []struct {
		name string
		role roles.Kind
		from string
		to   string
		want bool
	}{
		{"store accepts placed order", roles.StoreOwner, store.OrderPlaced, store.OrderAccepted, true},
		{"store cancels placed order", roles.StoreOwner, store.OrderPlaced, store.OrderCancelled, true},
		{"store dispatches accepted order", roles.StoreOwner, store.OrderAccepted, store.OrderDispatched, true},
		{"store cannot deliver", roles.StoreOwner, store.OrderDispatched, store.OrderDelivered, false},
		{"store cannot skip to dispatched", roles.StoreOwner, store.OrderPlaced, store.OrderDispatched, false},
		{"delivery delivers dispatched order", roles.DeliveryPartner, store.OrderDispatched, store.OrderDelivered, true},
		{"delivery cannot accept", roles.DeliveryPartner, store.OrderPlaced, store.OrderAccepted, false},
		{"delivery cannot cancel", roles.DeliveryPartner, store.OrderDispatched, store.OrderCancelled, false},
		{"admin forces delivered", roles.PlatformAdmin, store.OrderPlaced, store.OrderDelivered, true},
		{"admin cancels dispatched order", roles.PlatformAdmin, store.OrderDispatched, store.OrderCancelled, true},
		{"nobody leaves delivered", roles.PlatformAdmin, store.OrderDelivered, store.OrderCancelled, false},
		{"nobody leaves cancelled", roles.PlatformAdmin, store.OrderCancelled, store.OrderPlaced, false},
		{"customer cannot transition", roles.Customer, store.OrderPlaced, store.OrderCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := transitionAllowed(tt.role, tt.from, tt.to); got != tt.want {
				t.Fatalf("transitionAllowed(%s, %s, %s) = %v, want %v", tt.role, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, status := range []string{
		store.OrderPlaced, store.OrderAccepted, store.OrderDispatched, store.OrderDelivered, store.OrderCancelled,
	} {
		if !validOrderStatus(status) {
			t.Fatalf("expected %q to be a valid status", status)
		}
	}
	if validOrderStatus("returned") {
		t.Fatal("expected unknown status to be rejected")
	}
}

type fakeOrders struct {
	orders map[int64]*store.Order
}

func (f *fakeOrders) Create(_ context.Context, o *store.Order) error { return nil }

func (f *fakeOrders) GetByID(_ context.Context, id int64) (*store.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) ListByCustomer(_ context.Context, _ string) ([]store.Order, error) {
	return nil, nil
}

func (f *fakeOrders) ListByPincodes(_ context.Context, _ string, _ []string) ([]store.Order, error) {
	return nil, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id int64, status string) error {
	o, ok := f.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	o.Status = status
	return nil
}

type fakeProducts struct {
	owners map[int64]string
}

func (f *fakeProducts) Create(_ context.Context, _ *store.Product) error { return nil }

func (f *fakeProducts) GetByID(_ context.Context, id int64) (*store.Product, error) {
	owner, ok := f.owners[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &store.Product{ID: id, OwnerID: owner, IsActive: true}, nil
}

func (f *fakeProducts) ListByCategory(_ context.Context, _ int64) ([]store.Product, error) {
	return nil, nil
}

func (f *fakeProducts) ListByOwner(_ context.Context, _ string) ([]store.Product, error) {
	return nil, nil
}

func (f *fakeProducts) Update(_ context.Context, _ *store.Product) error { return nil }

func (f *fakeProducts) AddImageURL(_ context.Context, _ int64, _ string) error { return nil }

type fakePushTokens struct{}

func (f *fakePushTokens) Register(_ context.Context, _, _ string) error { return nil }

func (f *fakePushTokens) Remove(_ context.Context, _, _ string) error { return nil }

func (f *fakePushTokens) ListByAccount(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

func statusRequest(account *store.Account, orderID, status string) *http.Request {
	body := strings.NewReader(`{"status":"` + status + `"}`)
	req := httptest.NewRequest(http.MethodPatch, "/v1/store/orders/"+orderID+"/status", body)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderID", orderID)

	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, accountCtx, account)
	return req.WithContext(ctx)
}

func TestUpdateOrderStatusForeignStoreOrderReadsAbsent(t *testing.T) {
	orders := &fakeOrders{orders: map[int64]*store.Order{
		1: {ID: 1, Number: "VF-TEST0001", CustomerID: "c1", Pincode: "560001", Status: store.OrderPlaced,
			Items: []store.OrderItem{{ProductID: 7, Name: "Steel Bottle", Quantity: 2, PricePaise: 24900}}},
	}}
	app := newTestApp()
	app.store = store.Storage{
		Orders:     orders,
		Products:   &fakeProducts{owners: map[int64]string{7: "seller-1"}},
		PushTokens: &fakePushTokens{},
	}

	intruder := &store.Account{ID: "intruder-store", CurrentRole: roles.StoreOwner}

	rr := httptest.NewRecorder()
	app.updateOrderStatusHandler(rr, statusRequest(intruder, "1", store.OrderAccepted))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusNotFound)
	}
	if got := orders.orders[1].Status; got != store.OrderPlaced {
		t.Fatalf("order status moved to %q, want it untouched at %q", got, store.OrderPlaced)
	}
}

func TestUpdateOrderStatusOwnStoreOrder(t *testing.T) {
	orders := &fakeOrders{orders: map[int64]*store.Order{
		1: {ID: 1, Number: "VF-TEST0001", CustomerID: "c1", Pincode: "560001", Status: store.OrderPlaced,
			Items: []store.OrderItem{{ProductID: 7, Name: "Steel Bottle", Quantity: 2, PricePaise: 24900}}},
	}}
	app := newTestApp()
	app.store = store.Storage{
		Orders:     orders,
		Products:   &fakeProducts{owners: map[int64]string{7: "seller-1"}},
		PushTokens: &fakePushTokens{},
	}

	owner := &store.Account{ID: "seller-1", CurrentRole: roles.StoreOwner}

	rr := httptest.NewRecorder()
	app.updateOrderStatusHandler(rr, statusRequest(owner, "1", store.OrderAccepted))

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if got := orders.orders[1].Status; got != store.OrderAccepted {
		t.Fatalf("got order status %q, want %q", got, store.OrderAccepted)
	}
}

func TestUpdateOrderStatusDeliveryOutsideAssignedPincodes(t *testing.T) {
	orders := &fakeOrders{orders: map[int64]*store.Order{
		2: {ID: 2, Number: "VF-TEST0002", CustomerID: "c1", Pincode: "110001", Status: store.OrderDispatched,
			Items: []store.OrderItem{{ProductID: 7, Name: "Steel Bottle", Quantity: 1, PricePaise: 12450}}},
	}}
	app := newTestApp()
	app.store = store.Storage{
		Orders:     orders,
		Products:   &fakeProducts{owners: map[int64]string{7: "seller-1"}},
		PushTokens: &fakePushTokens{},
	}

	partner := &store.Account{
		ID:          "dp-1",
		CurrentRole: roles.DeliveryPartner,
		Roles: roles.Map{
			roles.DeliveryPartner: roles.Entry{
				Kind: roles.DeliveryPartner,
				Metadata: roles.Metadata{
					Delivery: &roles.DeliveryPartnerMetadata{
						VehicleType:      "bike",
						VehicleNumber:    "KA01AB1234",
						AssignedPincodes: []string{"560001"},
					},
				},
			},
		},
	}

	rr := httptest.NewRecorder()
	app.updateOrderStatusHandler(rr, statusRequest(partner, "2", store.OrderDelivered))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusNotFound)
	}
	if got := orders.orders[2].Status; got != store.OrderDispatched {
		t.Fatalf("order status moved to %q, want it untouched at %q", got, store.OrderDispatched)
	}
}

func TestUpdateOrderStatusDeliveryInAssignedPincode(t *testing.T) {
	orders := &fakeOrders{orders: map[int64]*store.Order{
		2: {ID: 2, Number: "VF-TEST0002", CustomerID: "c1", Pincode: "560001", Status: store.OrderDispatched,
			Items: []store.OrderItem{{ProductID: 7, Name: "Steel Bottle", Quantity: 1, PricePaise: 12450}}},
	}}
	app := newTestApp()
	app.store = store.Storage{
		Orders:     orders,
		Products:   &fakeProducts{owners: map[int64]string{7: "seller-1"}},
		PushTokens: &fakePushTokens{},
	}

	partner := &store.Account{
		ID:          "dp-1",
		CurrentRole: roles.DeliveryPartner,
		Roles: roles.Map{
			roles.DeliveryPartner: roles.Entry{
				Kind: roles.DeliveryPartner,
				Metadata: roles.Metadata{
					Delivery: &roles.DeliveryPartnerMetadata{
						VehicleType:      "bike",
						VehicleNumber:    "KA01AB1234",
						AssignedPincodes: []string{"560001"},
					},
				},
			},
		},
	}

	rr := httptest.NewRecorder()
	app.updateOrderStatusHandler(rr, statusRequest(partner, "2", store.OrderDelivered))

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if got := orders.orders[2].Status; got != store.OrderDelivered {
		t.Fatalf("got order status %q, want %q", got, store.OrderDelivered)
	}
}
