package model

import "slices"

type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityInternal Visibility = "internal"
	VisibilityDeleted  Visibility = "deleted"
)

type Depot struct {
	ID             string   `json:"id" bson:"_id,omitempty"`
	Name           string   `json:"name" bson:"name"`
	Description    string   `json:"description,omitempty" bson:"description"`
	OrganizationID string   `json:"organization_id" bson:"organization_id"`
	ManagerIDs     []string `json:"manager_ids,omitempty" bson:"manager_ids"`
	Active         bool     `json:"active" bson:"active"`
}

// ManagedBy reports whether userID is listed as a manager of the depot.
// Anonymous callers never manage a depot.
func (d *Depot) ManagedBy(userID string) bool {
	if userID == "" {
		return false
	}
	return slices.Contains(d.ManagerIDs, userID)
}

// Item describes one or more identical units stored in a depot.
type Item struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	DepotID     string     `json:"depot_id" bson:"depot_id"`
	Name        string     `json:"name" bson:"name"`
	Description string     `json:"description,omitempty" bson:"description"`
	Quantity    int        `json:"quantity" bson:"quantity"`
	Visibility  Visibility `json:"visibility" bson:"visibility"`
	Location    string     `json:"location,omitempty" bson:"location"`
}
