package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError lists every problem found in a Config.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

// Validate checks field tags and the references between sections.
func (c Config) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate config: %w", err)
		}
		for _, fe := range fieldErrs {
			problems = append(problems, describe(fe))
		}
	}

	for _, p := range c.Parameters {
		if p.End > p.Start && (p.Default < p.Start || p.Default > p.End) {
			problems = append(problems, fmt.Sprintf("parameter %q: default %v outside [%v, %v]", p.ID, p.Default, p.Start, p.End))
		}
	}
	if c.Automation.Enabled {
		if _, ok := c.Parameter(c.Automation.Parameter); !ok {
			problems = append(problems, fmt.Sprintf("automation: unknown parameter %q", c.Automation.Parameter))
		}
	}
	if c.Redis.Enabled {
		if _, ok := c.Parameter(c.Redis.Parameter); !ok {
			problems = append(problems, fmt.Sprintf("redis: unknown parameter %q", c.Redis.Parameter))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	if fe.Param() != "" {
		return fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s: failed %s", field, fe.Tag())
}
