package model

import "time"

type RentalStatus string

const (
	StatusPending  RentalStatus = "pending"
	StatusApproved RentalStatus = "approved"
	StatusDeclined RentalStatus = "declined"
	StatusRevoked  RentalStatus = "revoked"
	StatusReturned RentalStatus = "returned"
)

var rentalStatuses = []RentalStatus{
	StatusPending,
	StatusApproved,
	StatusDeclined,
	StatusRevoked,
	StatusReturned,
}

// AllRentalStatuses returns every known status in lifecycle order.
func AllRentalStatuses() []RentalStatus {
	out := make([]RentalStatus, len(rentalStatuses))
	copy(out, rentalStatuses)
	return out
}

func (s RentalStatus) Valid() bool {
	for _, known := range rentalStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s RentalStatus) String() string {
	return string(s)
}

// ParseRentalStatus reports false for anything outside the five known statuses.
func ParseRentalStatus(value string) (RentalStatus, bool) {
	s := RentalStatus(value)
	if !s.Valid() {
		return "", false
	}
	return s, true
}

// Rental is a request for one or more items of a single depot.
type Rental struct {
	ID         string       `json:"id" bson:"_id"`
	DepotID    string       `json:"depot_id" bson:"depot_id"`
	UserID     string       `json:"user_id,omitempty" bson:"user_id,omitempty"`
	FirstName  string       `json:"firstname" bson:"firstname"`
	LastName   string       `json:"lastname" bson:"lastname"`
	Email      string       `json:"email" bson:"email"`
	Purpose    string       `json:"purpose" bson:"purpose"`
	StartDate  time.Time    `json:"start_date" bson:"start_date"`
	ReturnDate time.Time    `json:"return_date" bson:"return_date"`
	State      RentalStatus `json:"state" bson:"state"`
	Items      []ItemRental `json:"items" bson:"items"`
	CreatedAt  time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" bson:"updated_at"`
}

type ItemRental struct {
	ItemID   string `json:"item_id" bson:"item_id"`
	Quantity int    `json:"quantity" bson:"quantity"`
	Returned int    `json:"returned" bson:"returned"`
}

// QuantityOf returns the rented quantity of the given item, 0 if absent.
func (r *Rental) QuantityOf(itemID string) int {
	total := 0
	for _, line := range r.Items {
		if line.ItemID == itemID {
			total += line.Quantity
		}
	}
	return total
}

type RentalRequest struct {
	DepotID    string         `json:"depot_id" validate:"required,mongodb"`
	FirstName  string         `json:"firstname" validate:"required,min=1,max=256"`
	LastName   string         `json:"lastname" validate:"required,min=1,max=256"`
	Email      string         `json:"email" validate:"required,email"`
	Purpose    string         `json:"purpose" validate:"required,min=1,max=256"`
	StartDate  time.Time      `json:"start_date" validate:"required"`
	ReturnDate time.Time      `json:"return_date" validate:"required,gtfield=StartDate"`
	Items      []ItemQuantity `json:"items" validate:"required,min=1,dive"`
}

type ItemQuantity struct {
	ItemID   string `json:"item_id" validate:"required,mongodb"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type StateChangeRequest struct {
	// State is not checked against the enumeration here: an unknown target
	// is an illegal transition, rejected by the state machine.
	State    RentalStatus `json:"state" validate:"required"`
	OldState RentalStatus `json:"old_state" validate:"required,rental_status"`
}
