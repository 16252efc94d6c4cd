package handler

import (
	"errors"
	"net/http"

	"market_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ResponseData 统一响应结构体，所有业务接口都返回 HTTP 200，由 code 区分结果
type ResponseData struct {
	Code int `json:"code"` // 业务响应状态码
	Msg  any `json:"msg"`  // 提示信息，参数错误时为 字段 -> 翻译后的提示
	Data any `json:"data"` // 数据
}

func writeResponse(c *gin.Context, code int, msg any, data any) {
	c.JSON(http.StatusOK, ResponseData{Code: code, Msg: msg, Data: data})
}

// HandleSuccess 返回成功响应
func HandleSuccess(c *gin.Context, data any) {
	writeResponse(c, errorx.CodeSuccess, "success", data)
}

// HandleError 通用错误处理方法
// 业务错误直接返回错误码和提示，存储类错误和未知错误记录日志后对外统一提示服务繁忙
func HandleError(c *gin.Context, err error) {
	var codeErr *errorx.CodeError
	if !errors.As(err, &codeErr) {
		zap.L().Error("system error",
			zap.String("path", c.Request.URL.Path),
			zap.String("user_id", currentUserId(c)),
			zap.Error(err),
		)
		writeResponse(c, errorx.ErrServerBusy.Code, errorx.ErrServerBusy.Msg, nil)
		return
	}

	switch codeErr.Code {
	case errorx.CodeDBError, errorx.CodeCacheError, errorx.CodeServerBusy:
		// 存储类错误的提示包含内部信息，只写日志
		zap.L().Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("user_id", currentUserId(c)),
			zap.Int("code", codeErr.Code),
			zap.Error(err),
		)
		writeResponse(c, codeErr.Code, errorx.ErrServerBusy.Msg, nil)
	default:
		writeResponse(c, codeErr.Code, codeErr.Msg, nil)
	}
}

// HandleParamError 处理参数绑定错误
// validator.ValidationErrors 翻译为 字段 -> 提示，其余 (如 JSON 格式错误) 返回通用提示
func HandleParamError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		writeResponse(c, errorx.ErrInvalidParam.Code, RemoveTopStruct(validationErrs.Translate(Trans)), nil)
		return
	}

	zap.L().Info("param bind error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	writeResponse(c, errorx.ErrInvalidParam.Code, errorx.ErrInvalidParam.Msg, nil)
}
