package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	ierr "github.com/studentaid/disbursement/internal/errors"
)

const (
	// TagAwardCode accepts award value codes such as CSLF or BCAG
	TagAwardCode = "award_code"
	// TagAmount accepts a non zero amount in dollars and cents
	TagAmount = "amount"
)

var (
	validate *validator.Validate

	awardCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{1,4}$`)
)

func NewValidator() *validator.Validate {
	v := validator.New()

	// report fields by their json names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// decimals are validated through their string form
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation(TagAwardCode, func(fl validator.FieldLevel) bool {
		return awardCodePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation(TagAmount, func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsZero() && d.Exponent() >= -2
	})

	validate = v
	return validate
}

func GetValidator() *validator.Validate {
	return validate
}

func ValidateRequest(req interface{}) error {
	if validate == nil {
		return ierr.NewError("validator not initialized").
			WithHint("Validator must be initialized before using it").
			Mark(ierr.ErrSystem)
	}

	if err := validate.Struct(req); err != nil {
		details := make(map[string]any)
		hint := "Request validation failed"
		var validateErrs validator.ValidationErrors
		if ierr.As(err, &validateErrs) {
			for _, fe := range validateErrs {
				details[fe.Field()] = message(fe)
			}
			if len(validateErrs) == 1 {
				hint = message(validateErrs[0])
			}
		}
		return ierr.WithError(err).
			WithHint(hint).
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// message is the operator facing text for one failed field
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case TagAwardCode:
		return fmt.Sprintf("%s must be an award code of up to 4 letters or digits", fe.Field())
	case TagAmount:
		return fmt.Sprintf("%s must be a non zero amount in dollars and cents", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	}
	return fe.Error()
}
