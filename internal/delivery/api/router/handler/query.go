package handler

import (
	"strings"

	domainerrors "taskhub/internal/domain/errors"
	"taskhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// pageRequest reads page, limit and sort from the query string. Absent or
// empty values stay nil so the usecase applies its defaults.
func pageRequest(c echo.Context) (usecase.PageRequest, error) {
	var req usecase.PageRequest
	var page, limit int

	err := echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("limit", &limit).
		String("sort", &req.Sort).
		BindError()
	if err != nil {
		return usecase.PageRequest{}, invalidQuery(err)
	}

	if hasQuery(c, "page") {
		req.Page = &page
	}
	if hasQuery(c, "limit") {
		req.Limit = &limit
	}

	return req, nil
}

func hasQuery(c echo.Context, name string) bool {
	return strings.TrimSpace(c.QueryParam(name)) != ""
}

func invalidQuery(err error) error {
	var bindErr *echo.BindingError
	if errors.As(err, &bindErr) {
		return domainerrors.ErrInvalidQuery.WithDetails("invalid value for " + bindErr.Field)
	}

	return domainerrors.ErrInvalidQuery.WithDetails(err.Error())
}

// recordID parses the :id path parameter. A malformed id names no record
// the caller owns, so it is reported as notFound.
func recordID(c echo.Context, notFound *domainerrors.BaseError) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, notFound
	}

	return id, nil
}
