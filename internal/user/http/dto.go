package http

import (
	"time"

	"github.com/nekogravitycat/car-rental-backend/internal/pkg/request"
	"github.com/nekogravitycat/car-rental-backend/internal/user"
)

// ListUsersRequest defines query parameters for listing users.
type ListUsersRequest struct {
	request.ListParams
	Email string `form:"email"`
	Name  string `form:"name"`
	Role  string `form:"role" binding:"omitempty,oneof=user admin"`
}

// CarSpecsBody is the favorite car profile in requests and responses.
type CarSpecsBody struct {
	Type         string `json:"type,omitempty" binding:"omitempty,car_type"`
	Brand        string `json:"brand,omitempty" binding:"omitempty,max=50"`
	Fuel         string `json:"fuel,omitempty" binding:"omitempty,car_fuel"`
	Transmission string `json:"transmission,omitempty" binding:"omitempty,car_transmission"`
	Seats        int    `json:"seats,omitempty" binding:"omitempty,min=1"`
}

func (b CarSpecsBody) toDomain() user.CarSpecs {
	return user.CarSpecs{
		Type:         b.Type,
		Brand:        b.Brand,
		Fuel:         b.Fuel,
		Transmission: b.Transmission,
		Seats:        b.Seats,
	}
}

func newCarSpecsBody(s user.CarSpecs) CarSpecsBody {
	return CarSpecsBody{
		Type:         s.Type,
		Brand:        s.Brand,
		Fuel:         s.Fuel,
		Transmission: s.Transmission,
		Seats:        s.Seats,
	}
}

// UserResponse is the shape of user data returned in API responses.
type UserResponse struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Email            string       `json:"email"`
	Tel              string       `json:"tel"`
	Role             string       `json:"role"`
	FavoriteCarSpecs CarSpecsBody `json:"favorite_car_specs"`
	LastLoginAt      *time.Time   `json:"last_login_at"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// NewUserResponse converts domain user.User to UserResponse used by the API.
func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Tel:              u.Tel,
		Role:             u.Role,
		FavoriteCarSpecs: newCarSpecsBody(u.FavoriteCarSpecs),
		LastLoginAt:      u.LastLoginAt,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

// RegisterRequest defines the payload for user registration.
// A role field in the body is ignored.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Tel      string `json:"tel" binding:"omitempty,max=20"`
}

// LoginRequest defines the payload for user login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateRoleRequest defines the payload for PUT /users/:id/role.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

// TokenResponse returns the token and user info.
type TokenResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
