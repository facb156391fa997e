package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reusedev/cutout-hub/internal/modules/errs"
)

var (
	ParamError            = gin.H{"code": 10001, "message": "param error"}
	ParamErrorWithMessage = func(message string) gin.H {
		return gin.H{"code": 10001, "message": message}
	}

	InternalError = gin.H{"code": 10002, "message": "internal error"}

	QueueFullError  = gin.H{"code": 10013, "message": "too many pending tasks, retry later"}
	TaskNotFound    = gin.H{"code": 10014, "message": "task not found or expired"}
	HistoryDisabled = gin.H{"code": 10015, "message": "history is disabled"}
	SuccessWithData = func(data interface{}) gin.H {
		return gin.H{"code": 0, "data": data}
	}
)

type kindStatus struct {
	status int
	code   int
}

var kinds = map[errs.Kind]kindStatus{
	errs.KindSizeExceeded:          {http.StatusRequestEntityTooLarge, 10003},
	errs.KindDecodeError:           {http.StatusUnprocessableEntity, 10004},
	errs.KindUnconfigured:          {http.StatusBadRequest, 10005},
	errs.KindUnknownProvider:       {http.StatusNotFound, 10006},
	errs.KindPaymentRequired:       {http.StatusPaymentRequired, 10007},
	errs.KindRateLimited:           {http.StatusTooManyRequests, 10008},
	errs.KindProviderFailure:       {http.StatusBadGateway, 10009},
	errs.KindAllProvidersFailed:    {http.StatusBadGateway, 10010},
	errs.KindToolInvocationFailure: {http.StatusInternalServerError, 10011},
	errs.KindCompositeError:        {http.StatusInternalServerError, 10012},
}

// FromError maps err to an http status and response body. Errors outside the taxonomy
// become InternalError without leaking their message.
func FromError(err error) (int, gin.H) {
	kind := errs.KindOf(err)
	s, ok := kinds[kind]
	if !ok {
		return http.StatusInternalServerError, InternalError
	}
	return s.status, gin.H{"code": s.code, "message": err.Error(), "kind": kind}
}
