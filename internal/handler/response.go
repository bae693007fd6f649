// Package handler contains the HTTP handlers.  Every endpoint replies
// with the same envelope: {"success": bool, "message": string,
// "data": ...}, so clients can branch on success without inspecting
// status codes.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/repository"
)

// Envelope is the uniform response body.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK replies 200 with data.
func OK(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Created replies 201 with data.
func Created(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Fail replies with a failed envelope and the given status.
func Fail(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: false, Message: message})
}

// BadRequest replies 400, used for validation failures.
func BadRequest(c echo.Context, message string) error {
	return Fail(c, http.StatusBadRequest, message)
}

// NotFound replies 404.
func NotFound(c echo.Context, message string) error {
	return Fail(c, http.StatusNotFound, message)
}

// Conflict replies 409, used for business-rule violations.
func Conflict(c echo.Context, message string) error {
	return Fail(c, http.StatusConflict, message)
}

// Unauthorized replies 401.
func Unauthorized(c echo.Context) error {
	return Fail(c, http.StatusUnauthorized, "unauthorized")
}

// DBError maps repository sentinels onto the envelope: not-found
// sentinels become 404, conflicts 409, anything else a generic 500
// that never leaks driver details.
func DBError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrMovieNotFound),
		errors.Is(err, repository.ErrHallNotFound),
		errors.Is(err, repository.ErrSeatNotFound),
		errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrTicketNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return NotFound(c, err.Error())
	case errors.Is(err, repository.ErrSeatsUnavailable),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrEmailExists):
		return Conflict(c, err.Error())
	default:
		return Fail(c, http.StatusInternalServerError, "database error")
	}
}
