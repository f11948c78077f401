package utils

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workboard-api/internal/constants"
)

var ErrInvalidPagination = errors.New("page and limit must be numeric and page must be within range")

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationMeta represents the pagination metadata in API responses
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationParams validates raw page/limit strings. Empty values take the
// defaults, values below one fall back to the defaults and limit is capped at
// MaxPageSize. A page whose offset would overflow is rejected.
func NewPaginationParams(rawPage, rawLimit string) (PaginationParams, error) {
	page, err := parsePositive(rawPage, constants.DefaultPage)
	if err != nil {
		return PaginationParams{}, err
	}
	limit, err := parsePositive(rawLimit, constants.DefaultPageSize)
	if err != nil {
		return PaginationParams{}, err
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}
	if page-1 > math.MaxInt/limit {
		return PaginationParams{}, ErrInvalidPagination
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}, nil
}

// GetPaginationParams extracts and validates pagination parameters from the request
func GetPaginationParams(c *gin.Context) (PaginationParams, error) {
	return NewPaginationParams(c.Query("page"), c.Query("limit"))
}

// Meta builds the response metadata for a page out of total matching records.
func (p PaginationParams) Meta(total int64) PaginationMeta {
	return PaginationMeta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: TotalPages(total, p.Limit),
	}
}

// TotalPages returns ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	l := int64(limit)
	return int((total + l - 1) / l)
}

func parsePositive(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrInvalidPagination
	}
	if n < constants.MinPageSize {
		return fallback, nil
	}
	return n, nil
}
