package params

import (
	"strconv"
	"strings"

	"classtime/core/constants"

	"github.com/labstack/echo/v4"
)

type QueryParams struct {
	PageNumber int
	PageSize   int
	Search     string
}

func (p QueryParams) Offset() int {
	return (p.PageNumber - 1) * p.PageSize
}

// NewQueryParams reads page, limit and search from the query string.
func NewQueryParams(c echo.Context) *QueryParams {
	params := &QueryParams{
		PageNumber: constants.DefaultPageNumber,
		PageSize:   constants.DefaultPageSize,
		Search:     strings.TrimSpace(c.QueryParam("search")),
	}

	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil && page > 0 {
		params.PageNumber = page
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil && limit > 0 {
		params.PageSize = min(limit, constants.MaxPageSize)
	}

	return params
}
