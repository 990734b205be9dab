package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nekogravitycat/car-rental-backend/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, u *User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockRepository) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	return m.Called(ctx, id, t).Error(0)
}

func (m *MockRepository) UpdateFavoriteCarSpecs(ctx context.Context, id string, specs CarSpecs) error {
	return m.Called(ctx, id, specs).Error(0)
}

func (m *MockRepository) UpdateRole(ctx context.Context, id string, role string) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *MockRepository) List(ctx context.Context, filter UserFilter) ([]*User, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*User), args.Int(1), args.Error(2)
}

func newTestService() (Service, *MockRepository) {
	repo := new(MockRepository)
	return NewService(repo, auth.NewBcryptPasswordHasherWithCost(4), zap.NewNop()), repo
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Success forces user role", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("Create", ctx, mock.MatchedBy(func(u *User) bool {
			return u.Email == "alice@example.com" && u.Role == auth.RoleUser && u.PasswordHash != "123456"
		})).Return(nil)

		u, err := svc.Register(ctx, RegisterRequest{
			Name:     " Alice ",
			Email:    " Alice@Example.com ",
			Password: "123456",
			Tel:      "0812345678",
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice", u.Name)
		assert.Equal(t, auth.RoleUser, u.Role)
		repo.AssertExpectations(t)
	})

	t.Run("Short password", func(t *testing.T) {
		svc, repo := newTestService()

		_, err := svc.Register(ctx, RegisterRequest{Name: "Bob", Email: "b@example.com", Password: "123"})
		assert.ErrorIs(t, err, ErrPasswordTooShort)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("Create", ctx, mock.Anything).Return(ErrEmailAlreadyUsed)

		_, err := svc.Register(ctx, RegisterRequest{Name: "Bob", Email: "b@example.com", Password: "123456"})
		assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.NewBcryptPasswordHasherWithCost(4).Hash("123456")
	require.NoError(t, err)
	stored := &User{ID: "u1", Email: "alice@example.com", PasswordHash: hash, Role: auth.RoleUser}

	t.Run("Success", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("GetByEmail", ctx, "alice@example.com").Return(stored, nil)
		repo.On("UpdateLastLogin", ctx, "u1", mock.AnythingOfType("time.Time")).Return(nil)

		u, err := svc.Login(ctx, "ALICE@example.com", "123456")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
		assert.NotNil(t, u.LastLoginAt)
	})

	t.Run("Unknown email", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, ErrNotFound)

		_, err := svc.Login(ctx, "nobody@example.com", "123456")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Wrong password", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("GetByEmail", ctx, "alice@example.com").Return(stored, nil)

		_, err := svc.Login(ctx, "alice@example.com", "wrong-pass")
		assert.ErrorIs(t, err, ErrInvalidPassword)
		repo.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Missing fields", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Login(ctx, "", "123456")
		assert.ErrorIs(t, err, ErrMissingLogin)
	})

	t.Run("Last login failure is tolerated", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("GetByEmail", ctx, "alice@example.com").Return(stored, nil)
		repo.On("UpdateLastLogin", ctx, "u1", mock.Anything).Return(errors.New("timeout"))

		_, err := svc.Login(ctx, "alice@example.com", "123456")
		assert.NoError(t, err)
	})
}

func TestSetRole(t *testing.T) {
	ctx := context.Background()

	t.Run("Promote", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("UpdateRole", ctx, "u1", auth.RoleAdmin).Return(nil)
		repo.On("GetByID", ctx, "u1").Return(&User{ID: "u1", Role: auth.RoleAdmin}, nil)

		u, err := svc.SetRole(ctx, "u1", auth.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, u.Role)
	})

	t.Run("Invalid role", func(t *testing.T) {
		svc, repo := newTestService()

		_, err := svc.SetRole(ctx, "u1", "root")
		assert.ErrorIs(t, err, ErrInvalidRole)
		repo.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUpdateFavoriteCarSpecs(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	specs := CarSpecs{Type: "SUV", Brand: "Toyota", Fuel: "Hybrid", Transmission: "Automatic", Seats: 7}
	repo.On("UpdateFavoriteCarSpecs", ctx, "u1", specs).Return(nil)
	repo.On("GetByID", ctx, "u1").Return(&User{ID: "u1", FavoriteCarSpecs: specs}, nil)

	u, err := svc.UpdateFavoriteCarSpecs(ctx, "u1", CarSpecs{Type: "SUV", Brand: " Toyota ", Fuel: "Hybrid", Transmission: "Automatic", Seats: 7})
	require.NoError(t, err)
	assert.Equal(t, specs, u.FavoriteCarSpecs)
}
