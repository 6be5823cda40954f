package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"wallet-ledger/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// maxScale matches the NUMERIC(18,2) columns.
const maxScale = 2

const maxIdempotencyKeyLen = 100

var safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = v.RegisterValidation("money", validateMoney)
		_ = v.RegisterValidation("ceiling", validateCeiling)
		_ = v.RegisterValidation("currency", validateCurrency)
	}
}

// decimalValue lets tags see a decimal as its canonical string.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func parseAmount(fl validator.FieldLevel) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return decimal.Zero, false
	}
	return d, d.Equal(d.Truncate(maxScale))
}

// validateMoney accepts positive amounts with at most two decimal places.
func validateMoney(fl validator.FieldLevel) bool {
	d, ok := parseAmount(fl)
	return ok && d.IsPositive()
}

// validateCeiling accepts non-negative amounts with at most two decimal places.
func validateCeiling(fl validator.FieldLevel) bool {
	d, ok := parseAmount(fl)
	return ok && !d.IsNegative()
}

func validateCurrency(fl validator.FieldLevel) bool {
	return domain.IsValidCurrency(fl.Field().String())
}

// ValidIdempotencyKey allows alphanumeric, underscore, dash, and dot, up to 100 characters.
func ValidIdempotencyKey(key string) bool {
	return len(key) <= maxIdempotencyKeyLen && safeStringRe.MatchString(key)
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				elem.SetString(sanitize(elem.String()))
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
