package budget

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields under their flag names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks the fields of c that do not depend on dataset tables.
func (c ExperimentConfig) Validate() error {
	if c.Protocol == nil {
		return NewErrConfiguration("prefix", "protocol is required")
	}
	if c.Model == nil {
		return NewErrConfiguration("model_name", "model is required")
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return NewErrConfiguration(fe.Field(), "value %v fails %q", fe.Value(), fe.Tag())
		}
		return NewErrConfiguration("config", "%v", err)
	}
	return nil
}
