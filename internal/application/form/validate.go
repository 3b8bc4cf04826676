package form

import (
	"strconv"
	"unicode/utf16"

	"github.com/go-playground/validator/v10"

	apperrors "story-time-api/pkg/errors"
)

// Submission 表单输入
type Submission struct {
	Topic string `validate:"utf16min=2"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("utf16min", utf16Min); err != nil {
		panic(err)
	}
	return v
}

// utf16Min 按 UTF-16 码元计长度，与浏览器端 String.length 一致
func utf16Min(fl validator.FieldLevel) bool {
	want, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return UTF16Len(fl.Field().String()) >= want
}

// UTF16Len 返回字符串的 UTF-16 码元数
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// ValidateTopic 校验主题至少 2 个字符
func ValidateTopic(topic string) error {
	if err := validate.Struct(Submission{Topic: topic}); err != nil {
		return apperrors.ErrValidationFailed.WithError(err)
	}
	return nil
}
