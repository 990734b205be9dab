package booking

import (
	"testing"

	"github.com/nekogravitycat/car-rental-backend/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner    = auth.Identity{UserID: "user-a", Role: auth.RoleUser}
	stranger = auth.Identity{UserID: "user-b", Role: auth.RoleUser}
	admin    = auth.Identity{UserID: "admin-1", Role: auth.RoleAdmin}
)

func TestParseStatus(t *testing.T) {
	for _, name := range StatusNames() {
		st, err := ParseStatus(name)
		require.NoError(t, err)
		assert.Equal(t, name, string(st))
	}

	for _, bad := range []string{"", "pending", "Active", "Done"} {
		_, err := ParseStatus(bad)
		assert.ErrorIs(t, err, ErrInvalidStatus, bad)
	}
}

func TestNewTransitionPolicy(t *testing.T) {
	_, err := NewTransitionPolicy([]string{"Pending", "Bogus"}, false)
	assert.Error(t, err)

	p, err := NewTransitionPolicy([]string{" Cancelled ", "Cancelled"}, false)
	require.NoError(t, err)
	assert.Equal(t, []Status{StatusCancelled}, p.userStatuses)
}

func TestTransitionPolicy_Roles(t *testing.T) {
	p := DefaultTransitionPolicy()
	pending := &Booking{UserID: owner.UserID, Status: StatusPending}

	tests := []struct {
		name   string
		actor  auth.Identity
		target Status
		want   error
	}{
		{"owner cancels", owner, StatusCancelled, nil},
		{"owner reopens", owner, StatusPending, nil},
		{"owner cannot confirm", owner, StatusConfirmed, ErrStatusForbidden},
		{"owner cannot complete", owner, StatusCompleted, ErrStatusForbidden},
		{"stranger cannot cancel", stranger, StatusCancelled, ErrForbidden},
		{"admin confirms", admin, StatusConfirmed, nil},
		{"admin completes", admin, StatusCompleted, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Check(tt.actor, pending, tt.target)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestTransitionPolicy_Graph(t *testing.T) {
	p, err := NewTransitionPolicy([]string{"Pending", "Cancelled"}, true)
	require.NoError(t, err)

	cancelled := &Booking{UserID: owner.UserID, Status: StatusCancelled}
	confirmed := &Booking{UserID: owner.UserID, Status: StatusConfirmed}

	assert.NoError(t, p.Check(owner, cancelled, StatusCancelled), "same status is idempotent")
	assert.ErrorIs(t, p.Check(owner, cancelled, StatusPending), ErrInvalidTransition)
	assert.ErrorIs(t, p.Check(admin, cancelled, StatusConfirmed), ErrInvalidTransition)
	assert.NoError(t, p.Check(admin, confirmed, StatusCompleted))
	assert.ErrorIs(t, p.Check(admin, confirmed, StatusPending), ErrInvalidTransition)

	// Without the graph any target goes for admins.
	assert.NoError(t, DefaultTransitionPolicy().Check(admin, cancelled, StatusPending))
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize(owner, owner.UserID, ActionDelete))
	assert.NoError(t, Authorize(admin, owner.UserID, ActionView))
	assert.ErrorIs(t, Authorize(stranger, owner.UserID, ActionUpdate), ErrForbidden)
	assert.ErrorIs(t, Authorize(auth.Identity{}, "", ActionView), ErrForbidden)
}

func TestEntersLimits(t *testing.T) {
	tests := []struct {
		prev, next Status
		want       bool
	}{
		{StatusCancelled, StatusPending, true},
		{StatusCancelled, StatusConfirmed, true},
		{StatusCompleted, StatusConfirmed, true},
		{StatusConfirmed, StatusPending, true},
		{StatusPending, StatusPending, false},
		{StatusPending, StatusConfirmed, false},
		{StatusConfirmed, StatusConfirmed, false},
		{StatusPending, StatusCancelled, false},
		{StatusConfirmed, StatusCompleted, false},
		{StatusCancelled, StatusCancelled, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, entersLimits(tt.prev, tt.next), "%s -> %s", tt.prev, tt.next)
	}
}
