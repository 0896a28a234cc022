package helpers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// GetIDParam parses a positive integer path parameter, answering 400 otherwise.
func GetIDParam(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
