package app

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	ut "github.com/go-playground/universal-translator"
	val "github.com/go-playground/validator/v10"
)

type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// ErrorsToString 返回逗号拼接的错误消息
func (v ValidErrors) ErrorsToString() string {
	return strings.Join(v.Errors(), ",")
}

// MapsToString 返回 key=message 形式的错误列表
func (v ValidErrors) MapsToString() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Key+"="+err.Message)
	}
	return errs
}

// BindAndValid 绑定并验证请求参数，验证错误会使用请求语言翻译
func BindAndValid(c *gin.Context, v interface{}) (bool, ValidErrors) {
	var errs ValidErrors
	err := c.ShouldBind(v)
	if err != nil {
		vTrans := c.Value("trans")
		trans, _ := vTrans.(ut.Translator)
		verrs, ok := err.(val.ValidationErrors)
		if !ok {
			errs = append(errs, &ValidError{
				Key:     "body",
				Message: err.Error(),
			})
			return false, errs
		}

		for key, value := range verrs.Translate(trans) {
			errs = append(errs, &ValidError{
				Key:     key,
				Message: value,
			})
		}

		return false, errs
	}

	return true, nil
}

// Validate 使用全局验证引擎校验结构体（非 HTTP 绑定场景）
func Validate(obj any) error {
	if binding.Validator == nil {
		return nil
	}
	if validate, ok := binding.Validator.Engine().(*val.Validate); ok {
		return validate.Struct(obj)
	}
	return nil
}
