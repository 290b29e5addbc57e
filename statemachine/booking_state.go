package statemachine

import (
	"errors"
	"fmt"
	"strings"

	"milk-delivery-api/models"
)

// ErrInvalidTransition is returned when a status change is not in the transition table.
var ErrInvalidTransition = errors.New("invalid transition")

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.BookingStatus `json:"from"`
	To    models.BookingStatus `json:"to"`
	Actor models.Role          `json:"actor"`
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Worker on the route marks the outcome of the drop
	{From: models.StatusPending, To: models.StatusDelivered, Actor: models.RoleWorker},
	{From: models.StatusPending, To: models.StatusMissed, Actor: models.RoleWorker},
	// Customer cancels their own order before delivery
	{From: models.StatusPending, To: models.StatusCancelled, Actor: models.RoleCustomer},
	// Admin can record any outcome
	{From: models.StatusPending, To: models.StatusDelivered, Actor: models.RoleAdmin},
	{From: models.StatusPending, To: models.StatusMissed, Actor: models.RoleAdmin},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: models.RoleAdmin},
}

type transitionKey struct {
	From  models.BookingStatus
	To    models.BookingStatus
	Actor models.Role
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status models.BookingStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.BookingStatus) []models.BookingStatus {
	nexts := []models.BookingStatus{}
	seen := map[models.BookingStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if actor can move a booking from one state to another.
// Re-applying the current status is accepted so repeated worker taps are harmless.
func CanTransition(from, to models.BookingStatus, actor models.Role) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if from == to {
		return nil
	}
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return fmt.Errorf("%w: %s → %s is not allowed for %s; valid transitions from %s are: %s",
		ErrInvalidTransition, from, to, actor, from, describeValidFrom(from))
}

func describeValidFrom(status models.BookingStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	parts := make([]string, len(nexts))
	for i, s := range nexts {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
