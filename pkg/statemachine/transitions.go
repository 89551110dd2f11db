// Package statemachine holds the rental workflow: which status a rental may
// move to next, depending on whether the actor manages the rental's depot.
package statemachine

import (
	"slices"

	"verleih/pkg/model"
)

type Role int

const (
	RoleRequester Role = iota
	RoleManager
)

func (r Role) String() string {
	if r == RoleManager {
		return "manager"
	}
	return "requester"
}

func RoleFor(isManager bool) Role {
	if isManager {
		return RoleManager
	}
	return RoleRequester
}

// transitions is read-only after package initialisation.
var transitions = map[Role]map[model.RentalStatus][]model.RentalStatus{
	RoleManager: {
		model.StatusPending:  {model.StatusRevoked, model.StatusApproved, model.StatusDeclined},
		model.StatusRevoked:  {model.StatusPending},
		model.StatusApproved: {model.StatusPending, model.StatusRevoked, model.StatusDeclined, model.StatusReturned},
		model.StatusDeclined: {model.StatusPending, model.StatusApproved},
		model.StatusReturned: {model.StatusApproved},
	},
	RoleRequester: {
		model.StatusPending:  {model.StatusRevoked},
		model.StatusRevoked:  {model.StatusPending},
		model.StatusApproved: {model.StatusRevoked},
		model.StatusDeclined: {},
		model.StatusReturned: {},
	},
}

// AllowedTransitions lists the statuses the actor may move a rental to from
// current. Unknown statuses have no transitions. The result is a fresh slice.
func AllowedTransitions(isManager bool, current model.RentalStatus) []model.RentalStatus {
	return slices.Clone(transitions[RoleFor(isManager)][current])
}

// IsLegalTransition reports whether the actor may move a rental from current
// to requested. Self-transitions and unknown statuses are never legal.
func IsLegalTransition(isManager bool, current, requested model.RentalStatus) bool {
	if current == requested {
		return false
	}
	return slices.Contains(transitions[RoleFor(isManager)][current], requested)
}
