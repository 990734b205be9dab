package booking

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nekogravitycat/car-rental-backend/internal/auth"
	"github.com/nekogravitycat/car-rental-backend/internal/pkg/apperror"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
	StatusCompleted Status = "Completed"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}

// ActiveStatuses count towards the per-user booking limit.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

// Active reports whether s counts towards the per-user booking limit.
func (s Status) Active() bool {
	return slices.Contains(ActiveStatuses, s)
}

// ReviewableStatuses allow the booking owner to review the car.
var ReviewableStatuses = []Status{StatusConfirmed, StatusCompleted, StatusCancelled}

// ParseStatus accepts the exact status names only.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !slices.Contains(Statuses, st) {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// StatusNames returns the status names as plain strings.
func StatusNames() []string {
	out := make([]string, len(Statuses))
	for i, s := range Statuses {
		out[i] = string(s)
	}
	return out
}

var lifecycle = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
	StatusCancelled: nil,
	StatusCompleted: nil,
}

// TransitionPolicy decides who may move a booking to which status.
type TransitionPolicy struct {
	userStatuses []Status
	enforceGraph bool
}

// NewTransitionPolicy builds a policy where non-admin owners may set userStatuses.
// With enforceGraph the lifecycle adjacency applies to every actor.
func NewTransitionPolicy(userStatuses []string, enforceGraph bool) (TransitionPolicy, error) {
	p := TransitionPolicy{enforceGraph: enforceGraph}
	for _, name := range userStatuses {
		st, err := ParseStatus(strings.TrimSpace(name))
		if err != nil {
			return TransitionPolicy{}, fmt.Errorf("unknown booking status %q", name)
		}
		if !slices.Contains(p.userStatuses, st) {
			p.userStatuses = append(p.userStatuses, st)
		}
	}
	return p, nil
}

// DefaultTransitionPolicy lets owners only reopen or cancel and skips the graph.
func DefaultTransitionPolicy() TransitionPolicy {
	return TransitionPolicy{userStatuses: []Status{StatusPending, StatusCancelled}}
}

// Check returns nil when actor may move b to target. Setting the current
// status again is always allowed for whoever may touch the booking.
func (p TransitionPolicy) Check(actor auth.Identity, b *Booking, target Status) error {
	if !actor.IsAdmin() {
		if !slices.Contains(p.userStatuses, target) {
			return ErrStatusForbidden
		}
		if err := Authorize(actor, b.UserID, ActionSetStatus); err != nil {
			return err
		}
	}
	if target == b.Status || !p.enforceGraph {
		return nil
	}
	if !slices.Contains(lifecycle[b.Status], target) {
		return ErrInvalidTransition
	}
	return nil
}

type Action string

const (
	ActionView      Action = "view"
	ActionUpdate    Action = "update"
	ActionSetStatus Action = "set_status"
	ActionDelete    Action = "delete"
)

// Authorize applies the owner-or-admin rule shared by every booking operation.
func Authorize(actor auth.Identity, ownerID string, action Action) error {
	if actor.CanAccess(ownerID) {
		return nil
	}
	return apperror.Wrap(fmt.Errorf("user %s may not %s booking of %s", actor.UserID, action, ownerID),
		ErrForbidden.Code, ErrForbidden.Message)
}
