package handlers

import (
	"net/http"
	"strconv"

	"yatube/internal/models"

	"github.com/labstack/echo/v4"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// getUserIDFromContext returns the authenticated user's ID, or 0 when the
// request carries no valid token.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return 0
	}
	return claims.UserID
}

// pageParams reads limit/offset pagination from the query string.
func pageParams(c echo.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset, _ = strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// paginated writes the collection envelope: the unpaginated total under
// "count" and the current page under "response".
func paginated(c echo.Context, count int64, items interface{}) error {
	return c.JSON(http.StatusOK, echo.Map{
		"count":    count,
		"response": items,
	})
}

func parseUintParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}
