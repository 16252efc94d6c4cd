package handler

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Trans 定义全局翻译器 (导出供 response.go 使用)
var Trans ut.Translator

// roomIdPattern 聊天室 ID 形如 R + 字母数字，总长不超过 20
var roomIdPattern = regexp.MustCompile(`^R[0-9A-Za-z]{1,19}$`)

// validateRoomId 自定义 roomid 校验规则
func validateRoomId(fl validator.FieldLevel) bool {
	return roomIdPattern.MatchString(fl.Field().String())
}

// InitTrans 初始化翻译器
// locale 参数指定需要初始化的语言，例如 "zh" 或 "en"
func InitTrans(locale string) (err error) {

	// 确保 Validator 已初始化
	// 在 Gin v1.9+ 中 binding.Validator 可能为 nil，需要先初始化
	if binding.Validator == nil {
		binding.Validator = &defaultValidator{validator: validator.New()}
	}

	// 修改 gin 框架中的 Validator 引擎属性，实现自定制
	// binding.Validator.Engine() 返回的是 interface{}，需要断言为 *validator.Validate 类型
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {

		// 报错信息使用 json tag（如 room_id），query 参数没有 json tag 时退回 form tag
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			if name == "-" {
				return ""
			}
			return name
		})

		if err = v.RegisterValidation("roomid", validateRoomId); err != nil {
			return err
		}

		zhT := zh.New() // 初始化中文翻译器
		enT := en.New() // 初始化英文翻译器

		// 英文为 fallback，同时支持中文和英文
		uni := ut.New(enT, zhT, enT)

		var ok bool
		Trans, ok = uni.GetTranslator(locale)
		if !ok {
			return fmt.Errorf("uni.GetTranslator(%s) failed", locale)
		}

		roomIdMsg := "{0} is not a valid room id"
		switch locale {
		case "zh":
			err = zh_translations.RegisterDefaultTranslations(v, Trans)
			roomIdMsg = "{0}不是合法的聊天室ID"
		default:
			err = en_translations.RegisterDefaultTranslations(v, Trans)
		}
		if err != nil {
			return err
		}

		// roomid 规则的翻译
		err = v.RegisterTranslation("roomid", Trans,
			func(ut ut.Translator) error {
				return ut.Add("roomid", roomIdMsg, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T("roomid", fe.Field())
				return t
			},
		)
	}
	return
}

// RemoveTopStruct 去除提示信息中的结构体名称 (导出供 response.go 使用)
// validator 返回的字段名带有结构体前缀（如 "SendMessageRequest.room_id"）
func RemoveTopStruct(fields map[string]string) map[string]string {
	res := make(map[string]string)
	for field, err := range fields {
		// 截取点号之后的部分
		res[field[strings.Index(field, ".")+1:]] = err
	}
	return res
}

// defaultValidator 是一个实现了 StructValidator 接口的结构体
// 用于在 Gin v1.9+ 中初始化 binding.Validator
type defaultValidator struct {
	validator *validator.Validate
}

// ValidateStruct 实现 StructValidator 接口的 ValidateStruct 方法
func (v *defaultValidator) ValidateStruct(obj interface{}) error {
	return v.validator.Struct(obj)
}

// Engine 实现 StructValidator 接口的 Engine 方法
func (v *defaultValidator) Engine() interface{} {
	return v.validator
}
