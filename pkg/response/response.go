package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/edugrant/internal/domain/apperror"
)

type APIResponse[T any] struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Code      string      `json:"code,omitempty"`
	Data      T           `json:"data"`
	Meta      interface{} `json:"meta,omitempty"`
	Error     interface{} `json:"error,omitempty"`
}

// Success writes a success envelope and returns it.
func Success[T any](ctx *gin.Context, status int, data T, message string, meta interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
	}
	ctx.JSON(status, resp)
	return resp
}

// Error writes an error envelope, aborts the handler chain and returns the envelope.
// code is the machine-readable error kind; err carries details such as field hints.
func Error[T any](ctx *gin.Context, status int, code, message string, err interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Code:      code,
		Error:     err,
	}
	ctx.AbortWithStatusJSON(status, resp)
	return resp
}

// Fail writes the error envelope for err. The code is the error kind; internal
// failures get a generic message.
func Fail(ctx *gin.Context, err error) APIResponse[any] {
	kind := apperror.KindOf(err)
	msg := "Internal server error"
	if kind != apperror.KindInternal {
		msg = err.Error()
	}
	var details interface{}
	if fields := apperror.FieldsOf(err); len(fields) > 0 {
		details = fields
	}
	return Error[any](ctx, apperror.HTTPStatus(kind), string(kind), msg, details)
}
