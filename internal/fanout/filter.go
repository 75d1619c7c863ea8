package fanout

import (
	"fmt"
	"regexp"
	"strings"
)

const filterPatternErrorTemplateConstant = "invalid repository filter %q: %v"

// FilterPattern selects repositories by directory base name. The zero value matches everything.
type FilterPattern struct {
	expression *regexp.Regexp
}

// FilterPatternError reports a filter expression that does not compile.
type FilterPatternError struct {
	Pattern string
	Cause   error
}

// Error describes the rejected pattern.
func (patternError FilterPatternError) Error() string {
	return fmt.Sprintf(filterPatternErrorTemplateConstant, patternError.Pattern, patternError.Cause)
}

// Unwrap exposes the regular expression compilation error.
func (patternError FilterPatternError) Unwrap() error {
	return patternError.Cause
}

// CompileFilterPattern compiles a regular expression filter. Blank input yields a pattern that matches
// every name.
func CompileFilterPattern(rawPattern string) (FilterPattern, error) {
	if len(strings.TrimSpace(rawPattern)) == 0 {
		return FilterPattern{}, nil
	}

	expression, compileError := regexp.Compile(rawPattern)
	if compileError != nil {
		return FilterPattern{}, FilterPatternError{Pattern: rawPattern, Cause: compileError}
	}
	return FilterPattern{expression: expression}, nil
}

// Matches reports whether the name contains a match of the pattern anywhere.
func (pattern FilterPattern) Matches(name string) bool {
	if pattern.expression == nil {
		return true
	}
	return pattern.expression.MatchString(name)
}

// IsEmpty reports whether the pattern accepts every name.
func (pattern FilterPattern) IsEmpty() bool {
	return pattern.expression == nil
}

// String returns the source expression.
func (pattern FilterPattern) String() string {
	if pattern.expression == nil {
		return ""
	}
	return pattern.expression.String()
}
