package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"mobile-money-service/models"

	"github.com/go-playground/validator/v10"
)

// FieldError describes a single invalid or missing request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is the full set of validation failures for a request.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	fields := make([]string, len(e))
	for i, fe := range e {
		fields[i] = fe.Field
	}
	return "invalid fields: " + strings.Join(fields, ", ")
}

// msisdnDigits matches the digits of a phone number after separators are
// stripped: optional leading +, then 10-15 digits.
var msisdnDigits = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// Validator validates payment requests field by field.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use json tag names in error reports so callers can map errors back to
	// request fields directly.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("msisdn", func(fl validator.FieldLevel) bool {
		phone := fl.Field().String()
		stripped := strings.NewReplacer(" ", "", "-", "").Replace(phone)
		return msisdnDigits.MatchString(stripped)
	})

	_ = v.RegisterValidation("supported_currency", func(fl validator.FieldLevel) bool {
		return models.SupportedCurrencies[strings.ToUpper(fl.Field().String())]
	})

	return &Validator{validate: v}
}

// ValidatePaymentRequest checks the request and returns one FieldError per
// missing or invalid field, or nil when the request is valid. Pure, no side
// effects.
func (v *Validator) ValidatePaymentRequest(req *models.PaymentRequest) FieldErrors {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{{Field: "request", Message: err.Error()}}
	}

	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: messageFor(fe)})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "msisdn":
		return "must be a phone number of 10-15 digits, optional leading +"
	case "supported_currency":
		return "is not a supported currency"
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	default:
		return "is invalid"
	}
}
