package request

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sangkips/hisab-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// RegisterValidators installs the custom binding tags on gin's validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}

// Register adds decimal_gte0, txkind and entrytype to v
func Register(v *validator.Validate) error {
	// Decimals are validated through their string form.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	// Field errors report the wire name of the field.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})

	validators := map[string]validator.Func{
		"decimal_gte0": decimalGTE0,
		"txkind":       txKind,
		"entrytype":    entryType,
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

func decimalGTE0(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && !d.IsNegative()
}

func txKind(fl validator.FieldLevel) bool {
	return enum.TransactionKind(fl.Field().String()).IsValid()
}

func entryType(fl validator.FieldLevel) bool {
	return enum.EntryType(fl.Field().String()).IsValid()
}
