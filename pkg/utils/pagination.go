package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// WindowParams is a limit/offset window over a list.
type WindowParams struct {
	Limit  int
	Offset int
}

// GetWindowParams reads ?limit= and ?offset=, or derives the offset from
// ?page= when no offset is given.
func GetWindowParams(c echo.Context, defaultLimit int) WindowParams {
	if defaultLimit <= 0 || defaultLimit > MaxLimit {
		defaultLimit = DefaultLimit
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > MaxLimit {
		limit = defaultLimit
	}

	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
		if page, _ := strconv.Atoi(c.QueryParam("page")); page > 1 {
			offset = (page - 1) * limit
		}
	}

	return WindowParams{Limit: limit, Offset: offset}
}

// Window slices items to the window. Out-of-range offsets yield an empty slice.
func Window[T any](items []T, p WindowParams) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}
