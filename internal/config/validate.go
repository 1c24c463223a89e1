package config

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

//nolint:gochecknoglobals // Validator caches struct metadata; build it once.
var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// ValidationError is a single field failure, named by its YAML path.
type ValidationError struct {
	Field string
	Tag   string
	Param string
}

// ValidationErrors collects every field failure of one Validate call.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "invalid config"
	}

	parts := make([]string, len(v))
	for i, e := range v {
		if e.Param != "" {
			parts[i] = e.Field + " failed on " + e.Tag + "=" + e.Param
		} else {
			parts[i] = e.Field + " failed on " + e.Tag
		}
	}
	return "invalid config: " + strings.Join(parts, "; ")
}

// Validate checks c against its struct tags.
func (c *Config) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	failures := make(ValidationErrors, 0, len(ve))
	for _, fe := range ve {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		failures = append(failures, ValidationError{
			Field: field,
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return failures
}

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}
