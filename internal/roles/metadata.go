package roles

import (
	"errors"
	"fmt"
)

var ErrInvalidMetadata = errors.New("invalid role metadata")

// Metadata is a tagged union of role specific attributes. Exactly the
// variant matching the entry's Kind may be set; the access-control logic
// never reads into it.
type Metadata struct {
	Store    *StoreOwnerMetadata      `json:"store,omitempty"`
	Delivery *DeliveryPartnerMetadata `json:"delivery,omitempty"`
	Operator *OperatorMetadata        `json:"operator,omitempty"`
	Customer *CustomerMetadata        `json:"customer,omitempty"`
}

type StoreOwnerMetadata struct {
	BusinessType string `json:"business_type" validate:"required"`
	BusinessName string `json:"business_name" validate:"required,max=120"`
	GST          string `json:"gst,omitempty" validate:"omitempty,max=20"`
	Pincode      string `json:"pincode" validate:"required,pincode"`
}

type DeliveryPartnerMetadata struct {
	VehicleType      string   `json:"vehicle_type" validate:"required"`
	VehicleNumber    string   `json:"vehicle_number" validate:"required,max=20"`
	AssignedPincodes []string `json:"assigned_pincodes,omitempty" validate:"omitempty,dive,pincode"`
}

type OperatorMetadata struct {
	AssignedPincodes []string `json:"assigned_pincodes,omitempty" validate:"omitempty,dive,pincode"`
	AssignedArea     string   `json:"assigned_area,omitempty" validate:"omitempty,max=120"`
	CommissionRate   float64  `json:"commission_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
}

type CustomerMetadata struct {
	DeliveryAddress *Address `json:"delivery_address,omitempty"`
}

type Address struct {
	Line1   string `json:"line1" validate:"required,max=200"`
	City    string `json:"city" validate:"required,max=80"`
	State   string `json:"state" validate:"required,max=80"`
	Pincode string `json:"pincode" validate:"required,pincode"`
}

var validBusinessTypes = map[string]bool{
	"manufacturer": true,
	"distributor":  true,
	"trader":       true,
	"retailer":     true,
}

var validVehicleTypes = map[string]bool{
	"bike":  true,
	"van":   true,
	"truck": true,
}

// Validate checks that the metadata carries exactly the variant kind
// requires and that its fixed-set fields hold known values. Field level
// shape checks (lengths, pincode format) are the transport layer's job.
func (m Metadata) Validate(kind Kind) error {
	if err := m.onlyVariant(kind); err != nil {
		return err
	}

	switch kind {
	case StoreOwner:
		if m.Store == nil {
			return fmt.Errorf("%w: store owner metadata is required", ErrInvalidMetadata)
		}
		if !validBusinessTypes[m.Store.BusinessType] {
			return fmt.Errorf("%w: unknown business type %q", ErrInvalidMetadata, m.Store.BusinessType)
		}
	case DeliveryPartner:
		if m.Delivery == nil {
			return fmt.Errorf("%w: delivery partner metadata is required", ErrInvalidMetadata)
		}
		if !validVehicleTypes[m.Delivery.VehicleType] {
			return fmt.Errorf("%w: unknown vehicle type %q", ErrInvalidMetadata, m.Delivery.VehicleType)
		}
	}
	return nil
}

// onlyVariant rejects metadata variants that do not belong to kind, so a
// stray payload can never smuggle attributes onto the wrong role.
func (m Metadata) onlyVariant(kind Kind) error {
	set := map[Kind]bool{
		StoreOwner:        m.Store != nil,
		DeliveryPartner:   m.Delivery != nil,
		TerritoryOperator: m.Operator != nil,
		Customer:          m.Customer != nil,
	}
	for k, present := range set {
		if present && k != kind {
			return fmt.Errorf("%w: %s metadata not allowed on %s role", ErrInvalidMetadata, k, kind)
		}
	}
	return nil
}
