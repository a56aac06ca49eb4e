package roles

import (
	"errors"
	"testing"
)

func TestMetadataValidate(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		md      Metadata
		wantErr bool
	}{
		{
			name: "store owner with valid business type",
			kind: StoreOwner,
			md:   Metadata{Store: &StoreOwnerMetadata{BusinessType: "manufacturer", BusinessName: "ABC Manufacturing", Pincode: "560001"}},
		},
		{
			name:    "store owner missing metadata",
			kind:    StoreOwner,
			md:      Metadata{},
			wantErr: true,
		},
		{
			name:    "store owner unknown business type",
			kind:    StoreOwner,
			md:      Metadata{Store: &StoreOwnerMetadata{BusinessType: "wholesaler"}},
			wantErr: true,
		},
		{
			name: "delivery partner with bike",
			kind: DeliveryPartner,
			md:   Metadata{Delivery: &DeliveryPartnerMetadata{VehicleType: "bike", VehicleNumber: "KA-01-AB-1234"}},
		},
		{
			name:    "delivery partner missing metadata",
			kind:    DeliveryPartner,
			md:      Metadata{},
			wantErr: true,
		},
		{
			name:    "delivery partner unknown vehicle",
			kind:    DeliveryPartner,
			md:      Metadata{Delivery: &DeliveryPartnerMetadata{VehicleType: "scooter"}},
			wantErr: true,
		},
		{
			name: "operator metadata optional",
			kind: TerritoryOperator,
			md:   Metadata{},
		},
		{
			name: "customer without address",
			kind: Customer,
			md:   Metadata{},
		},
		{
			name: "platform admin carries nothing",
			kind: PlatformAdmin,
			md:   Metadata{},
		},
		{
			name:    "wrong variant for kind",
			kind:    Customer,
			md:      Metadata{Store: &StoreOwnerMetadata{BusinessType: "retailer"}},
			wantErr: true,
		},
		{
			name:    "admin with stray metadata",
			kind:    PlatformAdmin,
			md:      Metadata{Customer: &CustomerMetadata{}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.md.Validate(tt.kind)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMetadata) {
					t.Fatalf("expected ErrInvalidMetadata, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
		})
	}
}
