package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, p *Provider) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Provider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Provider), args.Error(1)
}

func (m *MockRepository) GetByIDs(ctx context.Context, ids []string) ([]*Provider, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*Provider), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter Filter) ([]*Provider, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*Provider), args.Int(1), args.Error(2)
}

func (m *MockRepository) Update(ctx context.Context, p *Provider) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Trims and stores", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", ctx, mock.MatchedBy(func(p *Provider) bool {
			return p.Name == "Hertz" && p.Tel == "021234567"
		})).Return(nil)

		p, err := NewService(repo).Create(ctx, CreateRequest{Name: " Hertz ", Address: "Bangkok", Tel: "021234567"})
		require.NoError(t, err)
		assert.Equal(t, "Hertz", p.Name)
	})

	t.Run("Blank address", func(t *testing.T) {
		repo := new(MockRepository)

		_, err := NewService(repo).Create(ctx, CreateRequest{Name: "Hertz", Address: "  ", Tel: "02"})
		assert.ErrorIs(t, err, ErrAddressRequired)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("Partial update", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", ctx, "p1").Return(&Provider{ID: "p1", Name: "Old", Address: "A", Tel: "1"}, nil)
		repo.On("Update", ctx, mock.MatchedBy(func(p *Provider) bool {
			return p.Name == "New" && p.Address == "A"
		})).Return(nil)

		name := "New"
		p, err := NewService(repo).Update(ctx, "p1", UpdateRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "New", p.Name)
	})

	t.Run("Not found", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", ctx, "missing").Return(nil, ErrNotFound)

		_, err := NewService(repo).Update(ctx, "missing", UpdateRequest{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Cannot blank a field", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", ctx, "p1").Return(&Provider{ID: "p1", Name: "Old", Address: "A", Tel: "1"}, nil)

		empty := ""
		_, err := NewService(repo).Update(ctx, "p1", UpdateRequest{Tel: &empty})
		assert.ErrorIs(t, err, ErrTelRequired)
	})
}

func TestDeleteInUse(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("Delete", ctx, "p1").Return(ErrInUse)

	assert.ErrorIs(t, NewService(repo).Delete(ctx, "p1"), ErrInUse)
}
