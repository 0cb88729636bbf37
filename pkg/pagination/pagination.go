package pagination

import (
	"net/http"
	"strconv"
)

// MaxLimit caps the page size a client can request.
const MaxLimit = 100

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// NewParams builds params for the given page and limit, normalising
// out-of-range values.
func NewParams(page, limit, defaultLimit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// FromRequest extracts page and limit from the query string. Missing or
// malformed values fall back to page 1 and defaultLimit; oversized limits are
// capped at MaxLimit.
func FromRequest(r *http.Request, defaultLimit int) Params {
	page, limit := 1, defaultLimit

	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = v
	}

	return NewParams(page, limit, defaultLimit)
}

// Meta is the pagination block of a list response.
type Meta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewMeta computes pages as ceil(total/limit).
func NewMeta(total int, params Params) Meta {
	pages := 0
	if params.Limit > 0 {
		pages = total / params.Limit
		if total%params.Limit > 0 {
			pages++
		}
	}
	return Meta{Page: params.Page, Limit: params.Limit, Total: total, Pages: pages}
}

// Result pairs a page of items with its pagination metadata.
type Result[T any] struct {
	Items []T
	Meta  Meta
}

// NewResult creates a paginated result. A nil slice becomes empty so it
// encodes as [].
func NewResult[T any](items []T, total int, params Params) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{Items: items, Meta: NewMeta(total, params)}
}
