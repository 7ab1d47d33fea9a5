package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Err is the JSON error envelope returned to clients.
type Err struct {
	StatusCode int    `json:"status_code"`
	ErrorMsg   string `json:"error"`

	internal error `json:"-"`
}

func (e *Err) Error() string {
	return e.ErrorMsg
}

func ErrBadRequest(err error) *Err {
	return &Err{
		StatusCode: http.StatusBadRequest,
		ErrorMsg:   err.Error(),
	}
}

func ErrUnauthorized() *Err {
	return &Err{
		StatusCode: http.StatusUnauthorized,
		ErrorMsg:   "authentication required",
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		StatusCode: http.StatusForbidden,
		ErrorMsg:   err.Error(),
	}
}

func ErrNotFound(resource, key string, value any) *Err {
	return &Err{
		StatusCode: http.StatusNotFound,
		ErrorMsg:   fmt.Sprintf("%v not found (%v=%v)", resource, key, value),
	}
}

func ErrConflict(err error) *Err {
	return &Err{
		StatusCode: http.StatusConflict,
		ErrorMsg:   err.Error(),
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		StatusCode: http.StatusInternalServerError,
		ErrorMsg:   "internal server error",
		internal:   err,
	}
}

// RenderErr writes the envelope. Internal errors are logged with the
// request path but never leaked to the response body.
func RenderErr(ctx *gin.Context, err *Err) {
	if err.internal != nil {
		zap.L().Error("request failed",
			zap.String("path", ctx.FullPath()),
			zap.Error(err.internal),
		)
	}

	ctx.AbortWithStatusJSON(err.StatusCode, err)
}
