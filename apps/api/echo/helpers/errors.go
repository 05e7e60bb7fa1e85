package helpers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	ErrHttpUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	ErrHttpForbidden    = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	ErrHttpNotFound     = echo.NewHTTPError(http.StatusNotFound, "not found")

	errTokenSigningFailed      = errors.New("failed to sign token")
	errUnexpectedSigningMethod = errors.New("unexpected token signing method")
)
