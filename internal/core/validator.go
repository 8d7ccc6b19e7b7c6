package core

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"parkingpass/internal/types"
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of validating one request struct.
type ValidationResult struct {
	Errors []ValidationError
}

// Valid reports whether no field was rejected.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Validator wraps go-playground/validator with the domain tags "korea_lat"
// and "korea_lon". Field names in errors use the json tag.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a Validator and registers the custom tags.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("korea_lat", func(fl validator.FieldLevel) bool {
		lat := fl.Field().Float()
		return lat >= types.KoreaMinLat && lat <= types.KoreaMaxLat
	})
	_ = v.RegisterValidation("korea_lon", func(fl validator.FieldLevel) bool {
		lon := fl.Field().Float()
		return lon >= types.KoreaMinLon && lon <= types.KoreaMaxLon
	})

	return &Validator{validate: v, logger: logger}
}

// Validate checks s and collects every field failure.
func (v *Validator) Validate(s any) ValidationResult {
	err := v.validate.Struct(s)
	if err == nil {
		return ValidationResult{}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		v.logger.Warn("unexpected validator error", "error", err)
		return ValidationResult{Errors: []ValidationError{{
			Code:    string(types.ErrCodeValidationInvalidFormat),
			Message: err.Error(),
		}}}
	}

	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Code:    string(codeForTag(fe.Tag())),
			Message: messageFor(fe),
		})
	}
	return ValidationResult{Errors: out}
}

// ValidateStruct returns nil when s is valid, otherwise an AppError whose
// code is that of the first failure and whose details list all of them.
func (v *Validator) ValidateStruct(s any) error {
	res := v.Validate(s)
	if res.Valid() {
		return nil
	}
	first := res.Errors[0]
	return types.NewAppErrorWithDetails(types.ErrorCode(first.Code), first.Message, nil,
		map[string]any{"validation_errors": res.Errors})
}

func codeForTag(tag string) types.ErrorCode {
	switch tag {
	case "required":
		return types.ErrCodeValidationMissingField
	case "latitude", "korea_lat":
		return types.ErrCodeValidationInvalidLat
	case "longitude", "korea_lon":
		return types.ErrCodeValidationInvalidLon
	default:
		return types.ErrCodeValidationInvalidFormat
	}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "latitude", "korea_lat":
		return fe.Field() + " must be a latitude inside the forecast domain"
	case "longitude", "korea_lon":
		return fe.Field() + " must be a longitude inside the forecast domain"
	case "min", "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "max", "lte":
		return fe.Field() + " must be at most " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}
