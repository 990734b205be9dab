package review

import (
	"context"
	"strings"
	"testing"

	"github.com/nekogravitycat/car-rental-backend/internal/auth"
	"github.com/nekogravitycat/car-rental-backend/internal/car"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, r *Review) error {
	args := m.Called(ctx, r)
	r.ID = "review-1"
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Review), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter Filter) ([]*Review, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*Review), args.Int(1), args.Error(2)
}

func (m *MockRepository) Update(ctx context.Context, r *Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockCars struct {
	mock.Mock
}

func (m *MockCars) GetByID(ctx context.Context, id string) (*car.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*car.Car), args.Error(1)
}

type MockEligibility struct {
	mock.Mock
}

func (m *MockEligibility) HasReviewableBooking(ctx context.Context, userID, carID string) (bool, error) {
	args := m.Called(ctx, userID, carID)
	return args.Bool(0), args.Error(1)
}

const carID = "6b1f0c3e-2a45-4c9b-8f6d-0d6c2f1e9a10"

var (
	alice = auth.Identity{UserID: "user-a", Role: auth.RoleUser}
	bob   = auth.Identity{UserID: "user-b", Role: auth.RoleUser}
	admin = auth.Identity{UserID: "admin-1", Role: auth.RoleAdmin}
)

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Requires qualifying booking", func(t *testing.T) {
		repo, cars, eligible := new(MockRepository), new(MockCars), new(MockEligibility)
		cars.On("GetByID", ctx, carID).Return(&car.Car{ID: carID}, nil)
		eligible.On("HasReviewableBooking", ctx, alice.UserID, carID).Return(false, nil)

		_, err := NewService(repo, cars, eligible).Create(ctx, alice, carID, CreateRequest{Rating: 5})
		assert.ErrorIs(t, err, ErrNotEligible)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		repo, cars, eligible := new(MockRepository), new(MockCars), new(MockEligibility)
		cars.On("GetByID", ctx, carID).Return(&car.Car{ID: carID}, nil)
		eligible.On("HasReviewableBooking", ctx, alice.UserID, carID).Return(true, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(r *Review) bool {
			return r.UserID == alice.UserID && r.Comment == "Smooth ride"
		})).Return(nil)
		repo.On("GetByID", ctx, "review-1").Return(&Review{ID: "review-1", Rating: 4}, nil)

		rv, err := NewService(repo, cars, eligible).Create(ctx, alice, carID, CreateRequest{Rating: 4, Comment: "  Smooth ride "})
		require.NoError(t, err)
		assert.Equal(t, "review-1", rv.ID)
	})

	t.Run("Unknown car", func(t *testing.T) {
		cars := new(MockCars)
		cars.On("GetByID", ctx, carID).Return(nil, car.ErrNotFound)

		_, err := NewService(new(MockRepository), cars, new(MockEligibility)).Create(ctx, alice, carID, CreateRequest{Rating: 4})
		assert.ErrorIs(t, err, car.ErrNotFound)
	})

	t.Run("Invalid rating and comment", func(t *testing.T) {
		cars, eligible := new(MockCars), new(MockEligibility)
		cars.On("GetByID", ctx, carID).Return(&car.Car{ID: carID}, nil)
		eligible.On("HasReviewableBooking", ctx, alice.UserID, carID).Return(true, nil)
		svc := NewService(new(MockRepository), cars, eligible)

		_, err := svc.Create(ctx, alice, carID, CreateRequest{Rating: 6})
		assert.ErrorIs(t, err, ErrInvalidRating)

		_, err = svc.Create(ctx, alice, carID, CreateRequest{Rating: 3, Comment: strings.Repeat("x", MaxCommentLength+1)})
		assert.ErrorIs(t, err, ErrCommentTooLong)
	})
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	ctx := context.Background()
	owned := func() *Review { return &Review{ID: "review-1", UserID: alice.UserID, Rating: 3} }

	t.Run("Other user is forbidden", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", ctx, "review-1").Return(owned(), nil)
		svc := NewService(repo, new(MockCars), new(MockEligibility))

		rating := 1
		_, err := svc.Update(ctx, bob, "review-1", UpdateRequest{Rating: &rating})
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = svc.Delete(ctx, bob, "review-1")
		assert.ErrorIs(t, err, ErrForbidden)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Owner updates", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", ctx, "review-1").Return(owned(), nil)
		repo.On("Update", ctx, mock.MatchedBy(func(r *Review) bool { return r.Rating == 5 })).Return(nil)

		rating := 5
		rv, err := NewService(repo, new(MockCars), new(MockEligibility)).Update(ctx, alice, "review-1", UpdateRequest{Rating: &rating})
		require.NoError(t, err)
		assert.Equal(t, 5, rv.Rating)
	})

	t.Run("Admin deletes and gets the record", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", ctx, "review-1").Return(owned(), nil)
		repo.On("Delete", ctx, "review-1").Return(nil)

		rv, err := NewService(repo, new(MockCars), new(MockEligibility)).Delete(ctx, admin, "review-1")
		require.NoError(t, err)
		assert.Equal(t, alice.UserID, rv.UserID)
	})
}
