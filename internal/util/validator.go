package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"prompt_library_backend/internal/model"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidationErrorDetail 单个字段的校验错误
type ValidationErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var registerOnce sync.Once

// RegisterValidators 为 gin 的 binding 注册枚举校验标签
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("tasktype", func(fl validator.FieldLevel) bool {
			return model.IsValidTaskType(fl.Field().String())
		})
		_ = v.RegisterValidation("outputformat", func(fl validator.FieldLevel) bool {
			return model.IsValidOutputFormat(fl.Field().String())
		})
	})
}

// BindJSON 绑定并校验请求体，失败时直接写出 400 响应
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(400, Response{
			Code:    400,
			Message: "Invalid request parameters",
			Data:    gin.H{"errors": validationDetails(err)},
		})
		return false
	}
	return true
}

func validationDetails(err error) []ValidationErrorDetail {
	var details []ValidationErrorDetail

	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs):
		for _, e := range verrs {
			details = append(details, ValidationErrorDetail{
				Field:   e.Field(),
				Message: fieldMessage(e),
			})
		}
	case errors.As(err, &typeErr):
		details = append(details, ValidationErrorDetail{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("Field '%s' must be of type %s", typeErr.Field, typeErr.Type.String()),
		})
	default:
		details = append(details, ValidationErrorDetail{
			Field:   "body",
			Message: "Malformed JSON or invalid request body",
		})
	}
	return details
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", e.Field())
	case "email":
		return fmt.Sprintf("Field '%s' must be a valid email address", e.Field())
	case "min":
		return fmt.Sprintf("Field '%s' must be at least %s characters long", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("Field '%s' must be at most %s characters long", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("Field '%s' must be one of [%s]", e.Field(), e.Param())
	case "tasktype":
		return fmt.Sprintf("Field '%s' is not a valid task type", e.Field())
	case "outputformat":
		return fmt.Sprintf("Field '%s' is not a valid output format", e.Field())
	}
	return fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", e.Field(), e.Tag())
}
