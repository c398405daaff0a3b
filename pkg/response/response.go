package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/assembleia-vote/backend/internal/models"
)

// Body is the standard API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries the structured failure: a stable kind plus a
// human-readable message.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// OKMessage sends a 200 JSON response with a message and optional data.
func OKMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Message: message, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: &ErrorBody{Kind: "BAD_REQUEST", Message: err}})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	c.JSON(http.StatusUnauthorized, Body{Success: false, Error: &ErrorBody{Kind: "UNAUTHORIZED", Message: err}})
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, err string) {
	c.JSON(http.StatusForbidden, Body{Success: false, Error: &ErrorBody{Kind: "FORBIDDEN", Message: err}})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Error: &ErrorBody{Kind: "NOT_FOUND", Message: err}})
}

// Conflict sends 409.
func Conflict(c *gin.Context, err string) {
	c.JSON(http.StatusConflict, Body{Success: false, Error: &ErrorBody{Kind: "CONFLICT", Message: err}})
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, Error: &ErrorBody{Kind: string(models.ErrInternal), Message: err}})
}

// DomainError maps a domain failure to its HTTP status. Non-domain errors
// fall back to a generic 500 so store internals never leak to the caller.
func DomainError(c *gin.Context, err error) {
	de, ok := err.(*models.DomainError)
	if !ok {
		Internal(c, models.Internal().Message)
		return
	}
	c.JSON(statusFor(de.Kind), Body{Success: false, Error: &ErrorBody{Kind: string(de.Kind), Message: de.Message}})
}

func statusFor(kind models.ErrorKind) int {
	switch kind {
	case models.ErrEventNotFound:
		return http.StatusNotFound
	case models.ErrNotAParticipant, models.ErrPresenceRequired:
		return http.StatusForbidden
	case models.ErrAlreadyVoted, models.ErrInvalidTransition, models.ErrEventHasVotes:
		return http.StatusConflict
	case models.ErrInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
