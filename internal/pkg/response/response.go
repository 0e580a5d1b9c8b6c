package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/photogate-dev/photogate-backend/internal/pkg/errors"
)

// ErrorBody is the error envelope returned to clients.
// Details carries the human-readable violation list when applicable.
type ErrorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// JSON writes a success payload as-is
func JSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error writes an error response with the given HTTP status
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorBody{Error: message})
}

// ErrorWithDetails writes an error response with a detail list
func ErrorWithDetails(c *gin.Context, httpStatus int, message string, details []string) {
	c.JSON(httpStatus, ErrorBody{Error: message, Details: details})
}

// BadRequest writes a 400 error
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// NotFound writes a 404 error
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError writes a 500 error
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// HandleError maps an AppError (or any error) to the contract error shape.
// Client errors carry their detail so the caller can correct the request;
// server-side detail stays out of the payload and is logged by the handler.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code := apperrors.ExtractCode(err)
	body := ErrorBody{Error: apperrors.GetMessage(code)}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && apperrors.IsClientError(code) && appErr.Details != "" {
		body.Details = []string{appErr.Details}
	}
	c.JSON(apperrors.GetHTTPStatus(code), body)
}
