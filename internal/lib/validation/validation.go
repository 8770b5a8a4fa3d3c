// Package validation собирает валидатор запросов с правилами, которых нет
// в go-playground/validator v9.
package validation

import (
	"reflect"
	"time"

	"github.com/go-playground/validator"
)

// TagDateTime правило datetime=<layout> для строковых полей.
const TagDateTime = "datetime"

// New возвращает валидатор с зарегистрированным правилом datetime.
func New() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation(TagDateTime, isDateTime); err != nil {
		panic("validation: register " + TagDateTime + ": " + err.Error())
	}
	return v
}

// isDateTime принимает строку, только если она записана ровно в формате
// layout. time.Parse допускает "9:30" для "15:04", такая запись отклоняется.
func isDateTime(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	s := field.String()
	if s == "" {
		return true
	}
	layout := fl.Param()
	t, err := time.Parse(layout, s)
	if err != nil {
		return false
	}
	return t.Format(layout) == s
}
