package service

import (
	"fmt"
	"strconv"
)

// defaultSearchLimit/maxSearchLimit mirror the teacher's
// defaultListLimit/maxListLimit (mcp/pagination.go), generalized into a
// type-parameterized helper so both search_types and any future paged
// query share the same cursor encoding.
const (
	defaultSearchLimit = 50
	maxSearchLimit     = 200
)

// applyPagination slices items into one page starting at cursor (an opaque
// decimal offset string), capped at limit, and returns the cursor for the
// next page or nil when exhausted — the direct generalization of the
// teacher's applyPagination[T any] to internal/service's own item types.
func applyPagination[T any](items []T, cursor string, limit int) ([]T, *string, error) {
	if limit <= 0 {
		if len(items) < defaultSearchLimit {
			limit = len(items)
		} else {
			limit = defaultSearchLimit
		}
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	start := 0
	if cursor != "" {
		idx, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid cursor value: %w", err)
		}
		if idx < 0 || idx > len(items) {
			return nil, nil, fmt.Errorf("cursor out of range")
		}
		start = idx
	}

	if start >= len(items) {
		return []T{}, nil, nil
	}

	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	page := items[start:end]

	if end >= len(items) {
		return page, nil, nil
	}
	next := strconv.Itoa(end)
	return page, &next, nil
}
