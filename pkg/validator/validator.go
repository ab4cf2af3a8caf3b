package validator

import (
	"reflect"
	"sync"

	"github.com/notepadplus/notepad-collab-service/pkg/util"

	"github.com/gin-gonic/gin/binding"
	val "github.com/go-playground/validator/v10"
)

// CustomValidator 替换 gin 默认的 binding.Validator
// 惰性初始化验证引擎，便于在启动阶段注册自定义规则
type CustomValidator struct {
	once     sync.Once
	validate *val.Validate
}

var _ binding.StructValidator = (*CustomValidator)(nil)

// NewCustomValidator 创建验证器
func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

// ValidateStruct 实现 binding.StructValidator
func (v *CustomValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}

	value := reflect.ValueOf(obj)
	switch value.Kind() {
	case reflect.Ptr:
		return v.ValidateStruct(value.Elem().Interface())
	case reflect.Struct:
		v.lazyinit()
		return v.validate.Struct(obj)
	case reflect.Slice, reflect.Array:
		count := value.Len()
		var errs val.ValidationErrors
		for i := 0; i < count; i++ {
			if err := v.ValidateStruct(value.Index(i).Interface()); err != nil {
				if verrs, ok := err.(val.ValidationErrors); ok {
					errs = append(errs, verrs...)
				} else {
					return err
				}
			}
		}
		if len(errs) > 0 {
			return errs
		}
		return nil
	default:
		return nil
	}
}

// Engine 返回底层验证引擎
func (v *CustomValidator) Engine() any {
	v.lazyinit()
	return v.validate
}

func (v *CustomValidator) lazyinit() {
	v.once.Do(func() {
		v.validate = val.New()
		v.validate.SetTagName("binding")
	})
}

// RegisterCustom 注册自定义验证规则
// 需要在 binding.Validator 替换为 CustomValidator 之后调用
func RegisterCustom() {
	validate, ok := binding.Validator.Engine().(*val.Validate)
	if !ok {
		return
	}

	// username 用户名字符集与长度限制
	_ = validate.RegisterValidation("username", func(fl val.FieldLevel) bool {
		return util.IsValidUsername(fl.Field().String())
	})
}
