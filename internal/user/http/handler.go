package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/car-rental-backend/internal/auth"
	"github.com/nekogravitycat/car-rental-backend/internal/pkg/request"
	"github.com/nekogravitycat/car-rental-backend/internal/pkg/response"
	"github.com/nekogravitycat/car-rental-backend/internal/user"
)

type UserHandler struct {
	userService  user.Service
	jwtManager   *auth.JWTManager
	secureCookie bool
}

func NewHandler(userService user.Service, jwtManager *auth.JWTManager, secureCookie bool) *UserHandler {
	return &UserHandler{
		userService:  userService,
		jwtManager:   jwtManager,
		secureCookie: secureCookie,
	}
}

// Register creates a plain user account and signs it in.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	u, err := h.userService.Register(c.Request.Context(), user.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Tel:      req.Tel,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.sendToken(c, http.StatusCreated, "User registered", u)
}

// Login authenticates a user using email and password.
// On success, it returns a JWT access token and the user profile.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	u, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.sendToken(c, http.StatusOK, "Logged in", u)
}

// Logout clears the token cookie. Bearer tokens are stateless, so clients drop them.
func (h *UserHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.TokenCookie, "", -1, "/", "", h.secureCookie, true)
	response.Success(c, http.StatusOK, "User logged out", nil)
}

func (h *UserHandler) sendToken(c *gin.Context, status int, msg string, u *user.User) {
	token, err := h.jwtManager.GenerateAccessToken(u.ID, u.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.TokenCookie, token, int(h.jwtManager.TTL().Seconds()), "/", "", h.secureCookie, true)

	response.Success(c, status, msg, TokenResponse{
		Token: token,
		User:  NewUserResponse(u),
	})
}

// Me retrieves the profile of the currently authenticated user.
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.userService.GetByID(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "User profile", NewUserResponse(u))
}

func (h *UserHandler) GetFavoriteCar(c *gin.Context) {
	u, err := h.userService.GetByID(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Favorite car specs", newCarSpecsBody(u.FavoriteCarSpecs))
}

func (h *UserHandler) SetFavoriteCar(c *gin.Context) {
	var body CarSpecsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	u, err := h.userService.UpdateFavoriteCarSpecs(c.Request.Context(), auth.GetUserID(c), body.toDomain())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Favorite car specs updated", newCarSpecsBody(u.FavoriteCarSpecs))
}

// List returns users for administrators.
func (h *UserHandler) List(c *gin.Context) {
	var req ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	req.Normalize()

	users, total, err := h.userService.List(c.Request.Context(), user.UserFilter{
		Email:    req.Email,
		Name:     req.Name,
		Role:     req.Role,
		Page:     req.Page,
		PageSize: req.Limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]UserResponse, len(users))
	for i, u := range users {
		items[i] = NewUserResponse(u)
	}

	response.Page(c, http.StatusOK, "Users", items, req.Page, req.Limit, total)
}

// UpdateRole assigns a role to another user.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	var body UpdateRoleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	u, err := h.userService.SetRole(c.Request.Context(), uri.ID, body.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "User role updated", NewUserResponse(u))
}
