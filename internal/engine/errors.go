package engine

import "fmt"

// ErrorCode identifies a class of configuration failure.
type ErrorCode string

const (
	ErrCodeInvalidStrategy   ErrorCode = "invalid_strategy"
	ErrCodeInvalidParameters ErrorCode = "invalid_parameters"
	ErrCodeOverlappingRanges ErrorCode = "overlapping_ranges"
	ErrCodeInvalidPrice      ErrorCode = "invalid_price"
)

// ConfigError reports a structurally invalid configuration supplied at call
// time. Data-quality problems (short history, flat series, empty capital)
// never produce a ConfigError; those degrade to a hold result instead.
type ConfigError struct {
	Code      ErrorCode
	Parameter string
	Message   string
}

func (e *ConfigError) Error() string {
	if e.Parameter != "" {
		return fmt.Sprintf("%s: %s (parameter %q)", e.Code, e.Message, e.Parameter)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalidParams(parameter, format string, args ...interface{}) *ConfigError {
	return &ConfigError{
		Code:      ErrCodeInvalidParameters,
		Parameter: parameter,
		Message:   fmt.Sprintf(format, args...),
	}
}
