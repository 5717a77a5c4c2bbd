package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError 应用业务错误
type AppError struct {
	Code    ErrCode // 业务错误码
	Message string  // 错误消息
	Cause   error   // 底层错误，可为空
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is 同错误码视为同一类错误
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New 创建新的业务错误
func New(code ErrCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf 创建新的业务错误（格式化消息）
func Newf(code ErrCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrapf 包装底层错误，消息中会附带底层错误信息
func Wrapf(cause error, code ErrCode, format string, args ...interface{}) *AppError {
	msg := fmt.Sprintf(format, args...)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &AppError{
		Code:    code,
		Message: msg,
		Cause:   cause,
	}
}

// IsAppError 判断是否为业务错误
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetAppError 获取业务错误，如果不是则返回nil
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// CodeOf 返回错误码，非业务错误返回 ErrInternalError
func CodeOf(err error) ErrCode {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code
	}
	return ErrInternalError
}

func hasCode(err error, codes ...ErrCode) bool {
	appErr := GetAppError(err)
	if appErr == nil {
		return false
	}
	for _, c := range codes {
		if appErr.Code == c {
			return true
		}
	}
	return false
}

// IsValidation 参数校验错误
func IsValidation(err error) bool { return hasCode(err, ErrInvalidParameter) }

// IsEmbedding Embedding 调用错误
func IsEmbedding(err error) bool { return hasCode(err, ErrEmbeddingFailed) }

// IsGeneration 生成模型调用错误
func IsGeneration(err error) bool { return hasCode(err, ErrLLMCallFailed) }

// IsRerank Rerank 打分错误
func IsRerank(err error) bool { return hasCode(err, ErrRerankFailed) }

// IsModelNotLoaded 模型句柄尚未初始化
func IsModelNotLoaded(err error) bool { return hasCode(err, ErrModelNotLoaded) }

// IsStore 向量库错误
func IsStore(err error) bool {
	return hasCode(err, ErrVectorStoreInit, ErrVectorSearch, ErrVectorInsert, ErrVectorDelete, ErrVectorStoreNotFound)
}
