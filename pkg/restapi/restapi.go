package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/repo"
	"video-pipeline-service/pkg/errno"
)

// Response is the envelope for every API reply.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 reply with the given payload.
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Failed translates err into an errno code and writes the reply.
func Failed(ctx *gin.Context, err error) {
	e := translate(err)
	ctx.JSON(httpStatus(e.Code), Response{
		Code:    e.Code,
		Message: e.Message,
	})
}

func translate(err error) *errno.Errno {
	var e *errno.Errno
	if errors.As(err, &e) {
		return e
	}

	var validation *gateway.ValidationError
	if errors.As(err, &validation) {
		return &errno.Errno{Code: errno.ErrInvalidParam.Code, Message: validation.Error()}
	}
	var source *gateway.SourceNotFoundError
	if errors.As(err, &source) {
		return &errno.Errno{Code: errno.ErrSourceMissing.Code, Message: source.Error()}
	}
	var traversal *gateway.PathTraversalError
	if errors.As(err, &traversal) {
		return errno.ErrInvalidParam
	}
	if errors.Is(err, repo.ErrNotFound) {
		return errno.ErrNotFound
	}

	return &errno.Errno{Code: errno.ErrInternalServer.Code, Message: err.Error()}
}

func httpStatus(code int) int {
	switch {
	case code == errno.OK.Code:
		return http.StatusOK
	case code == errno.ErrNotFound.Code,
		code == errno.ErrVideoNotFound.Code,
		code == errno.ErrUploadUrlNotFound.Code,
		code == errno.ErrSubtitleNotFound.Code,
		code == errno.ErrPlaylistNotFound.Code:
		return http.StatusNotFound
	case code == errno.ErrInvalidParam.Code,
		code == errno.ErrUploadUrlExpired.Code,
		code == errno.ErrUploadUrlUsed.Code,
		code == errno.ErrInvalidLanguageCode.Code,
		code == errno.ErrSourceMissing.Code:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
