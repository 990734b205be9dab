package response

import (
	"github.com/gin-gonic/gin"
)

// Envelope is the JSON body returned by every API endpoint.
type Envelope struct {
	Success    bool        `json:"success"`
	Msg        string      `json:"msg"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Errors     []string    `json:"errors,omitempty"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Total      int `json:"total"`
	Count      int `json:"count"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes the page metadata for a result set.
func NewPagination(total, count, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Total:      total,
		Count:      count,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// Success writes a successful envelope.
func Success(c *gin.Context, status int, msg string, data any) {
	c.JSON(status, Envelope{
		Success: true,
		Msg:     msg,
		Data:    data,
	})
}

// Page writes a successful envelope for a list endpoint.
func Page[T any](c *gin.Context, status int, msg string, items []T, page, limit, total int) {
	// Handle empty slice to avoid JSON outputting null
	if items == nil {
		items = make([]T, 0)
	}

	p := NewPagination(total, len(items), page, limit)
	c.JSON(status, Envelope{
		Success:    true,
		Msg:        msg,
		Data:       items,
		Pagination: &p,
	})
}
