package taskengine

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/AvaProtocol/avax-workflow/model"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func nodeValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// report fields by their name in the workflow document
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("positive_decimal", func(fl validator.FieldLevel) bool {
			d, ok := parseDecimal(fl.Field().String())
			return ok && d.IsPositive()
		})
		_ = validate.RegisterValidation("nonnegative_decimal", func(fl validator.FieldLevel) bool {
			d, ok := parseDecimal(fl.Field().String())
			return ok && !d.IsNegative()
		})
		_ = validate.RegisterValidation("decimal_text", func(fl validator.FieldLevel) bool {
			_, ok := parseDecimal(fl.Field().String())
			return ok
		})
	})

	return validate
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ValidateNode decodes the payload of a node and checks its required fields.
// Unknown types yield UnsupportedOperation, everything else ValidationFailed.
func ValidateNode(node *model.Node) (model.NodeData, error) {
	if !SupportedNodeType(node.Type) {
		return nil, NewStructuredError(
			UnsupportedOperation,
			fmt.Sprintf("unsupported node type: %s", node.Type),
			map[string]interface{}{"type": string(node.Type)},
		)
	}

	data, err := node.Decode()
	if err != nil {
		if errors.Is(err, model.ErrUnknownNodeType) {
			return nil, NewStructuredError(UnsupportedOperation, err.Error())
		}
		return nil, NewStructuredError(ValidationFailed, err.Error())
	}

	if err := nodeValidator().Struct(data); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return nil, fieldError(fieldErrs[0])
		}
		return nil, NewStructuredError(ValidationFailed, err.Error())
	}

	return data, nil
}

func fieldError(fe validator.FieldError) *StructuredError {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return NewMissingRequiredFieldError(field)
	case "required_without":
		return NewStructuredError(
			ValidationFailed,
			"inputValue or inputJson is required",
			map[string]interface{}{"field": field},
		)
	case "eth_addr":
		return NewStructuredError(
			ValidationFailed,
			fmt.Sprintf("%s must be a 0x prefixed address of 40 hex characters, got %q", field, fe.Value()),
			map[string]interface{}{"field": field, "kind": string(InvalidAddress)},
		)
	case "positive_decimal":
		return NewStructuredError(
			ValidationFailed,
			fmt.Sprintf("%s must be a positive decimal, got %q", field, fe.Value()),
			map[string]interface{}{"field": field},
		)
	case "oneof":
		return NewStructuredError(
			ValidationFailed,
			fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value()),
			map[string]interface{}{"field": field},
		)
	}

	return NewStructuredError(
		ValidationFailed,
		fmt.Sprintf("%s is invalid (%s)", field, fe.Tag()),
		map[string]interface{}{"field": field},
	)
}
