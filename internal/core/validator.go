package core

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"outfitpicker/internal/types"
)

// Validator wraps go-playground/validator with the outfit enum tags:
// weather, wind, timeofday, sex, intensity and feel. Each accepts the empty
// string so it composes with omitempty and required.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator builds a Validator. Field names in errors follow json tags.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	enumTags := map[string]func(string) bool{
		"weather":   func(s string) bool { return types.Weather(s).Valid() },
		"wind":      func(s string) bool { return types.Wind(s).Valid() },
		"timeofday": func(s string) bool { return types.TimeOfDay(s).Valid() },
		"sex":       func(s string) bool { return types.Sex(s).Valid() },
		"intensity": func(s string) bool { return types.Intensity(s).Valid() },
		"feel":      func(s string) bool { return types.Feel(s).Valid() },
	}
	for tag, valid := range enumTags {
		valid := valid
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || valid(s)
		})
		if err != nil {
			// Only fails for an empty tag or nil func.
			panic(fmt.Sprintf("registering %q validation: %v", tag, err))
		}
	}

	return &Validator{validate: v, logger: logger}
}

// ValidateStruct checks s and returns an AppError listing every failing
// field. Missing values map to validation_missing_required_field, anything
// else to code.
func (v *Validator) ValidateStruct(s any, code types.ErrorCode) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		v.logger.Error("validator misuse", "error", err)
		return types.NewAppError(types.ErrCodeInternalUnexpected, "request validation failed", err)
	}

	fields := make(map[string]any, len(verrs))
	missing := true
	for _, fe := range verrs {
		fields[fieldPath(fe)] = describe(fe)
		if fe.Tag() != "required" {
			missing = false
		}
	}
	if missing {
		code = types.ErrCodeValidationMissingField
	}

	first := verrs[0]
	return types.NewAppErrorWithDetails(code,
		fmt.Sprintf("%s: %s", fieldPath(first), describe(first)),
		err, map[string]any{"fields": fields})
}

// fieldPath drops the root struct name: "conditions.temperature".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "weather", "wind", "timeofday", "sex", "intensity", "feel":
		return fmt.Sprintf("unknown %s %q", fe.Tag(), fe.Value())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
