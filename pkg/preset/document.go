package preset

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Document is one preset: a name and parameter values in domain units.
type Document struct {
	Name   string             `json:"name" yaml:"name" validate:"max=128"`
	Values map[string]float64 `json:"values" yaml:"values" validate:"required,min=1,dive,keys,required,endkeys"`
}

// Validate checks the document's shape and that every value is finite.
func (d Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid preset: %w", err)
	}
	var errs []error
	for id, v := range d.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("value for %q is not finite", id))
		}
	}
	return errors.Join(errs...)
}
