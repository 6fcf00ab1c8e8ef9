package views

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"stockdesk/console-service/internal/app/console/store"
)

// ValidationError - ошибка формы; до хранилища такой черновик не доходит.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, rule := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, rule))
	}
	slices.Sort(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// UserMessage - текст для уведомления
func (e *ValidationError) UserMessage() string {
	return e.Error()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// имена полей в ошибках как в JSON
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// decimal проверяется как float64 (gte=0 и т.п.)
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Validate проверяет черновик целиком по тегам validate.
func Validate(draft any) error {
	return toValidationError(validate.Struct(draft))
}

// ValidatePatch проверяет только поля, присутствующие в патче.
// Ключи патча - JSON-имена; неизвестные ключи отклоняются.
func ValidatePatch[T any](patch store.Patch) error {
	var zero T
	typ := reflect.TypeOf(zero)
	byJSON := jsonFieldNames(typ)

	fields := make([]string, 0, len(patch))
	unknown := map[string]string{}
	for key := range patch {
		if key == store.IDKey {
			continue
		}
		name, ok := byJSON[key]
		if !ok {
			unknown[key] = "unknown"
			continue
		}
		fields = append(fields, name)
	}
	if len(unknown) > 0 {
		return &ValidationError{Fields: unknown}
	}
	if len(fields) == 0 {
		return nil
	}

	candidate, err := store.FromPatch[T](0, patch)
	if err != nil {
		return &ValidationError{Fields: map[string]string{"patch": err.Error()}}
	}
	return toValidationError(validate.StructPartial(candidate, fields...))
}

func jsonFieldNames(typ reflect.Type) map[string]string {
	out := make(map[string]string, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		out[name] = f.Name
	}
	return out
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[fe.Field()] = rule
	}
	return &ValidationError{Fields: fields}
}
