package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ConfigurationError reports a malformed graph description.
type ConfigurationError struct {
	Index  int      // position of the offending edge spec
	Fields []string // missing or invalid fields, e.g. "src"
	Err    error
}

func (e *ConfigurationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("invalid edge #%d: missing or invalid %s", e.Index, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("invalid edge #%d: %v", e.Index, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func newConfigurationError(index int, err error) *ConfigurationError {
	cfgErr := &ConfigurationError{Index: index, Err: err}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			cfgErr.Fields = append(cfgErr.Fields, strings.ToLower(fe.Field()))
		}
	}
	return cfgErr
}
