package model

import "time"

// DepotLock is an advisory lock serialising capacity-sensitive writes per depot.
// Owner is a random token so a holder whose lock expired cannot release the
// lock of the request that took it over.
type DepotLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
