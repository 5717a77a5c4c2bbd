package cmd

import (
	"net/http"
	"reflect"

	"github.com/Malowking/kbrag/core/errors"
	"github.com/gogf/gf/v2/errors/gcode"
	"github.com/gogf/gf/v2/errors/gerror"
	"github.com/gogf/gf/v2/net/ghttp"
	"github.com/gogf/gf/v2/util/gmeta"
)

// MiddlewareHandlerResponse is the default middleware handling handler response object and its error.
// AppError 的错误码决定 HTTP 状态码，请求校验失败返回 400，其余错误返回 500。
func MiddlewareHandlerResponse(r *ghttp.Request) {
	r.Middleware.Next()

	// There's custom buffer content, it then exits current handler.
	if r.Response.BufferLength() > 0 || r.Response.Writer.BytesWritten() > 0 {
		return
	}

	var (
		msg  string
		err  = r.GetError()
		res  = r.GetHandlerResponse()
		code = gerror.Code(err)
	)
	if err != nil {
		status, appCode := statusOf(err)
		r.Response.ClearBuffer()
		r.Response.WriteHeader(status)
		r.Response.WriteJson(ghttp.DefaultHandlerResponse{
			Code:    appCode,
			Message: messageOf(err),
			Data:    nil,
		})
		return
	}

	if r.Response.Status > 0 && r.Response.Status != http.StatusOK {
		switch r.Response.Status {
		case http.StatusNotFound:
			code = gcode.CodeNotFound
		case http.StatusForbidden:
			code = gcode.CodeNotAuthorized
		default:
			code = gcode.CodeUnknown
		}
		// It creates an error as it can be retrieved by other middlewares.
		err = gerror.NewCode(code, msg)
		r.SetError(err)
	} else {
		code = gcode.CodeOK
	}
	msg = code.Message()

	if noWrapResp(r) {
		r.Response.WriteJson(res)
		return
	}
	r.Response.WriteJson(ghttp.DefaultHandlerResponse{
		Code:    code.Code(),
		Message: msg,
		Data:    res,
	})
}

// statusOf 返回 HTTP 状态码和响应体中的业务码
func statusOf(err error) (int, int) {
	if appErr := errors.GetAppError(err); appErr != nil {
		return appErr.Code.HTTPStatusCode(), int(appErr.Code)
	}
	if gerror.Code(err) == gcode.CodeValidationFailed {
		return http.StatusBadRequest, int(errors.ErrInvalidParameter)
	}
	return http.StatusInternalServerError, int(errors.ErrInternalError)
}

func messageOf(err error) string {
	if appErr := errors.GetAppError(err); appErr != nil {
		return appErr.Message
	}
	return err.Error()
}

// 中间件中判断
func noWrapResp(r *ghttp.Request) bool {
	handler := r.GetServeHandler().Handler
	if handler.Info.Type != nil && handler.Info.Type.NumIn() == 2 {
		var objectReq = reflect.New(handler.Info.Type.In(1))
		if v := gmeta.Get(objectReq, "no_wrap_resp"); !v.IsEmpty() {
			return v.Bool()
		}
	}
	return false
}
