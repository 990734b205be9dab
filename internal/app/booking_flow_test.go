package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idBody struct {
	ID string `json:"id"`
}

type bookingBody struct {
	ID         string  `json:"id"`
	Status     string  `json:"status"`
	TotalPrice float64 `json:"total_price"`
	User       struct {
		ID string `json:"id"`
	} `json:"user"`
}

func (e *e2eEnv) createProvider(t *testing.T, token string) string {
	t.Helper()
	w := e.do(http.MethodPost, "/api/v1/providers", map[string]any{
		"name":    "Downtown Rentals",
		"address": "1 Main St",
		"tel":     "021234567",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	_, p := decode[idBody](t, w)
	return p.ID
}

func (e *e2eEnv) createCar(t *testing.T, token, name string, providerIDs ...string) string {
	t.Helper()
	w := e.do(http.MethodPost, "/api/v1/cars", map[string]any{
		"name":          name,
		"brand":         "Toyota",
		"model":         "Yaris",
		"type":          "Sedan",
		"seats":         5,
		"fuel":          "Petrol",
		"transmission":  "Automatic",
		"price_per_day": 50,
		"provider_ids":  providerIDs,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	_, c := decode[idBody](t, w)
	return c.ID
}

func bookingPayload(carID, providerID string) map[string]any {
	return map[string]any{
		"car_id":      carID,
		"provider_id": providerID,
		"start_date":  "2030-01-01",
		"end_date":    "2030-01-03",
	}
}

func TestAuthFlow(t *testing.T) {
	e := setupE2E(t)

	w := e.do(http.MethodPost, "/api/v1/auth/register", map[string]any{
		"name":     "Alice",
		"email":    "alice@rent.test",
		"password": "secret123",
		"tel":      "0800000000",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	t.Run("Login", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/v1/auth/login", map[string]any{
			"email":    "alice@rent.test",
			"password": "secret123",
		}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		_, data := decode[struct {
			Token string `json:"token"`
			User  struct {
				Role string `json:"role"`
			} `json:"user"`
		}](t, w)
		assert.NotEmpty(t, data.Token)
		assert.Equal(t, "user", data.User.Role)

		w = e.do(http.MethodGet, "/api/v1/users/me", nil, data.Token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Wrong password", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/v1/auth/login", map[string]any{
			"email":    "alice@rent.test",
			"password": "nope-nope",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/v1/auth/register", map[string]any{
			"name":     "Alice Again",
			"email":    "alice@rent.test",
			"password": "secret123",
		}, "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Bookings need a token", func(t *testing.T) {
		w := e.do(http.MethodGet, "/api/v1/bookings", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestBookingLifecycle(t *testing.T) {
	e := setupE2E(t)

	_, adminToken := e.createUser(t, "admin", true)
	owner, ownerToken := e.createUser(t, "owner", false)
	_, strangerToken := e.createUser(t, "stranger", false)

	providerID := e.createProvider(t, adminToken)
	carID := e.createCar(t, adminToken, "City Yaris", providerID)

	var bookingID string

	t.Run("Create", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/v1/bookings", bookingPayload(carID, providerID), ownerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		env, b := decode[bookingBody](t, w)
		assert.True(t, env.Success)
		assert.Equal(t, "Pending", b.Status)
		assert.Equal(t, 100.0, b.TotalPrice)
		assert.Equal(t, owner.ID, b.User.ID)
		bookingID = b.ID
	})

	t.Run("Duplicate pending rejected", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/v1/bookings", bookingPayload(carID, providerID), ownerToken)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Missing provider rejected", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/v1/bookings", bookingPayload(carID, ""), strangerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Reversed range persists nothing", func(t *testing.T) {
		body := bookingPayload(carID, providerID)
		body["start_date"], body["end_date"] = "2030-01-03", "2030-01-01"

		w := e.do(http.MethodPost, "/api/v1/bookings", body, strangerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = e.do(http.MethodGet, "/api/v1/bookings", nil, strangerToken)
		env, _ := decode[[]bookingBody](t, w)
		require.NotNil(t, env.Pagination)
		assert.Equal(t, 0, env.Pagination.Total)
	})

	t.Run("Stranger cannot read", func(t *testing.T) {
		w := e.do(http.MethodGet, "/api/v1/bookings/"+bookingID, nil, strangerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Admin sees everything", func(t *testing.T) {
		w := e.do(http.MethodGet, "/api/v1/bookings", nil, adminToken)
		require.Equal(t, http.StatusOK, w.Code)
		env, list := decode[[]bookingBody](t, w)
		assert.Equal(t, "All bookings", env.Msg)
		assert.Len(t, list, 1)
	})

	t.Run("Review before completion rejected", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/v1/cars/"+carID+"/reviews", map[string]any{"rating": 5}, ownerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Owner cannot confirm", func(t *testing.T) {
		w := e.do(http.MethodPut, "/api/v1/bookings/"+bookingID+"/status", map[string]any{"status": "Confirmed"}, ownerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Admin confirms", func(t *testing.T) {
		w := e.do(http.MethodPut, "/api/v1/bookings/"+bookingID+"/status", map[string]any{"status": "Confirmed"}, adminToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		env, b := decode[bookingBody](t, w)
		assert.Equal(t, "Booking status updated to Confirmed", env.Msg)
		assert.Equal(t, "Confirmed", b.Status)
	})

	t.Run("Review after confirmation", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/v1/cars/"+carID+"/reviews", map[string]any{
			"rating":  4,
			"comment": "Clean and quiet",
		}, ownerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = e.do(http.MethodGet, "/api/v1/cars/"+carID+"/reviews", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		_, list := decode[[]struct {
			UserName string `json:"user_name"`
			Rating   int    `json:"rating"`
		}](t, w)
		require.Len(t, list, 1)
		assert.Equal(t, "owner", list[0].UserName)
		assert.Equal(t, 4, list[0].Rating)
	})

	t.Run("Car in use cannot be deleted", func(t *testing.T) {
		w := e.do(http.MethodDelete, "/api/v1/cars/"+carID, nil, adminToken)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Owner deletes", func(t *testing.T) {
		w := e.do(http.MethodDelete, "/api/v1/bookings/"+bookingID, nil, ownerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		_, b := decode[bookingBody](t, w)
		assert.Equal(t, bookingID, b.ID)

		w = e.do(http.MethodGet, "/api/v1/bookings/"+bookingID, nil, ownerToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBookingQuota(t *testing.T) {
	e := setupE2E(t)

	_, adminToken := e.createUser(t, "admin", true)
	_, token := e.createUser(t, "renter", false)
	providerID := e.createProvider(t, adminToken)

	for i := range 3 {
		carID := e.createCar(t, adminToken, fmt.Sprintf("Car %d", i), providerID)
		w := e.do(http.MethodPost, "/api/v1/bookings", bookingPayload(carID, providerID), token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	extra := e.createCar(t, adminToken, "Car 3", providerID)
	w := e.do(http.MethodPost, "/api/v1/bookings", bookingPayload(extra, providerID), token)
	require.Equal(t, http.StatusForbidden, w.Code)
	env, _ := decode[any](t, w)
	assert.Equal(t, "Maximum 3 active bookings allowed", env.Msg)

	t.Run("Cancelling frees a slot", func(t *testing.T) {
		w := e.do(http.MethodGet, "/api/v1/bookings", nil, token)
		_, list := decode[[]bookingBody](t, w)
		require.Len(t, list, 3)

		w = e.do(http.MethodPut, "/api/v1/bookings/"+list[0].ID+"/status", map[string]any{"status": "Cancelled"}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = e.do(http.MethodPost, "/api/v1/bookings", bookingPayload(extra, providerID), token)
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})
}

func TestBookingQuotaUnderConcurrency(t *testing.T) {
	e := setupE2E(t)

	_, adminToken := e.createUser(t, "admin", true)
	u, _ := e.createUser(t, "racer", false)
	providerID := e.createProvider(t, adminToken)

	const attempts = 6
	cars := make([]string, attempts)
	for i := range cars {
		cars[i] = e.createCar(t, adminToken, fmt.Sprintf("Racer %d", i), providerID)
	}

	token, err := e.container.JWTManager.GenerateAccessToken(u.ID, "user")
	require.NoError(t, err)

	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i] = e.do(http.MethodPost, "/api/v1/bookings", bookingPayload(cars[i], providerID), token).Code
		}()
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		if code == http.StatusCreated {
			created++
		} else {
			assert.Equal(t, http.StatusForbidden, code)
		}
	}
	assert.Equal(t, 3, created)

	var active int
	err = e.pool.QueryRow(context.Background(),
		"SELECT count(*) FROM bookings WHERE user_id = $1 AND status IN ('Pending', 'Confirmed')", u.ID).Scan(&active)
	require.NoError(t, err)
	assert.Equal(t, 3, active)
}

func TestBookingReopen(t *testing.T) {
	e := setupE2E(t)

	_, adminToken := e.createUser(t, "admin", true)
	u, token := e.createUser(t, "reopener", false)
	providerID := e.createProvider(t, adminToken)

	carA := e.createCar(t, adminToken, "Car A", providerID)
	carB := e.createCar(t, adminToken, "Car B", providerID)
	carC := e.createCar(t, adminToken, "Car C", providerID)
	carD := e.createCar(t, adminToken, "Car D", providerID)

	book := func(carID string) string {
		t.Helper()
		w := e.do(http.MethodPost, "/api/v1/bookings", bookingPayload(carID, providerID), token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		_, b := decode[bookingBody](t, w)
		return b.ID
	}
	setStatus := func(id, status, tok string) int {
		t.Helper()
		return e.do(http.MethodPut, "/api/v1/bookings/"+id+"/status", map[string]any{"status": status}, tok).Code
	}

	first := book(carA)
	require.Equal(t, http.StatusOK, setStatus(first, "Cancelled", token))
	second := book(carA)

	t.Run("Second pending booking for the same car", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, setStatus(first, "Pending", token))
	})

	bookingB := book(carB)
	book(carC)
	require.Equal(t, http.StatusOK, setStatus(second, "Cancelled", token))

	t.Run("Reopen within limits", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, setStatus(first, "Pending", token))
	})

	t.Run("Reopen past the quota", func(t *testing.T) {
		require.Equal(t, http.StatusOK, setStatus(bookingB, "Cancelled", token))
		book(carD)

		assert.Equal(t, http.StatusForbidden, setStatus(bookingB, "Pending", token))
		assert.Equal(t, http.StatusForbidden, setStatus(bookingB, "Confirmed", adminToken))
	})

	t.Run("Admin confirming an active booking is unaffected", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, setStatus(first, "Confirmed", adminToken))
	})

	var active, pendingOnA int
	err := e.pool.QueryRow(context.Background(),
		"SELECT count(*) FILTER (WHERE status IN ('Pending', 'Confirmed')), count(*) FILTER (WHERE status = 'Pending' AND car_id = $2) FROM bookings WHERE user_id = $1",
		u.ID, carA).Scan(&active, &pendingOnA)
	require.NoError(t, err)
	assert.Equal(t, 3, active)
	assert.LessOrEqual(t, pendingOnA, 1)
}
