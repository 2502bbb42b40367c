package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the wire shape of every error response. Clients rely on the
// "detail" field to surface user-facing messages, so all handlers must go
// through these helpers instead of writing ad-hoc error payloads.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// OK writes the payload directly with status 200
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created writes the payload directly with status 201
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Error writes a detail-style error body with the given status
func Error(c *gin.Context, status int, detail string) {
	c.JSON(status, ErrorBody{Detail: detail})
}

// AbortError writes a detail-style error body and aborts the handler chain
func AbortError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, ErrorBody{Detail: detail})
}

// BadRequest writes a 400 error
func BadRequest(c *gin.Context, detail string) {
	Error(c, http.StatusBadRequest, detail)
}

// Unauthorized writes a 401 error
func Unauthorized(c *gin.Context, detail string) {
	Error(c, http.StatusUnauthorized, detail)
}

// NotFound writes a 404 error
func NotFound(c *gin.Context, detail string) {
	Error(c, http.StatusNotFound, detail)
}

// UnprocessableEntity writes a 422 error
func UnprocessableEntity(c *gin.Context, detail string) {
	Error(c, http.StatusUnprocessableEntity, detail)
}

// InternalError writes a 500 error. The underlying error is intentionally
// not included in the body; it belongs in the request log.
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}
