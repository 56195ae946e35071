package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. Custom tags are registered in
// init() before the first call to Struct.
var v = validator.New()

func init() {
	// notblank rejects strings that are empty once surrounding whitespace is trimmed.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.String {
			return true
		}
		return strings.TrimSpace(f.String()) != ""
	})
}

// Error lists the failed fields of a validated struct.
type Error struct {
	Fields []string
	msg    string
}

func (e *Error) Error() string { return e.msg }

// Struct validates the given struct using its validate tags.
// Returns a *Error with a human-readable message, or nil.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs, fields []string
		for _, fe := range ve {
			fields = append(fields, fe.Field())
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return &Error{Fields: fields, msg: strings.Join(msgs, "; ")}
	}
	return nil
}
