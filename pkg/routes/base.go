// Package routes holds the helpers shared by the HTTP handler packages.
package routes

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	appctx "github.com/Ramsey-B/clover/pkg/context"
)

var validate = validator.New()

// ParseUUID parses a UUID path parameter and returns it in canonical form.
func ParseUUID(c echo.Context, param string) (string, error) {
	return ParseUUIDValue(param, c.Param(param))
}

// ParseUUIDValue validates a UUID taken from a body or query field.
func ParseUUIDValue(name, idStr string) (string, error) {
	if idStr == "" {
		return "", httperror.NewHTTPError(http.StatusBadRequest, "missing "+name)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return "", httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid %s: must be a valid UUID", name)
	}

	return id.String(), nil
}

// GetCoachID extracts the authenticated coach from the request context.
func GetCoachID(c echo.Context) (string, error) {
	coachID := appctx.GetCoachID(c.Request().Context())
	if coachID == "" {
		return "", httperror.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	id, err := uuid.Parse(coachID)
	if err != nil {
		return "", httperror.NewHTTPError(http.StatusUnauthorized, "invalid coach identity")
	}

	return id.String(), nil
}

// Bind decodes the request into req and validates it.
func Bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return BadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return BadRequest(err.Error())
	}
	return nil
}

// SuccessResponse returns a 200 OK with data
func SuccessResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

// CreatedResponse returns a 201 Created with data
func CreatedResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, data)
}

func NoContentResponse(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// BadRequest returns a 400 Bad Request error
func BadRequest(message string) error {
	return httperror.NewHTTPError(http.StatusBadRequest, message)
}
