package shared

import (
	"errors"
	"fmt"
	"strings"
)

const (
	ownerSlugFieldNameConstant        = "owner"
	repositoryNameFieldNameConstant   = "repository name"
	valueRequiredMessageConstant      = "value required"
	pathSeparatorMessageConstant      = "must not contain '/'"
	whitespaceMessageConstant         = "must not contain whitespace"
	relativeSegmentMessageConstant    = "must not be '.' or '..'"
	invalidValueErrorTemplateConstant = "invalid %s %q: %s"
	pathSeparatorCharacterConstant    = "/"
	whitespaceCharactersConstant      = " \t\r\n"
	currentDirectorySegmentConstant   = "."
	parentDirectorySegmentConstant    = ".."
)

// ErrInvalidValue is the sentinel wrapped by every value validation failure.
var ErrInvalidValue = errors.New("invalid value")

// InvalidValueError describes a rejected identifier.
type InvalidValueError struct {
	Field   string
	Value   string
	Message string
}

// Error describes the rejected value.
func (valueError InvalidValueError) Error() string {
	return fmt.Sprintf(invalidValueErrorTemplateConstant, valueError.Field, valueError.Value, valueError.Message)
}

// Unwrap exposes ErrInvalidValue.
func (valueError InvalidValueError) Unwrap() error {
	return ErrInvalidValue
}

// OwnerSlug is a GitHub user or organization login.
type OwnerSlug struct {
	value string
}

// NewOwnerSlug trims and validates an owner login.
func NewOwnerSlug(raw string) (OwnerSlug, error) {
	trimmed, validationError := validateSegment(ownerSlugFieldNameConstant, raw)
	if validationError != nil {
		return OwnerSlug{}, validationError
	}
	return OwnerSlug{value: trimmed}, nil
}

// String returns the owner login.
func (slug OwnerSlug) String() string {
	return slug.value
}

// RepositoryName is a repository name usable as a single directory name.
type RepositoryName struct {
	value string
}

// NewRepositoryName trims and validates a repository name.
func NewRepositoryName(raw string) (RepositoryName, error) {
	trimmed, validationError := validateSegment(repositoryNameFieldNameConstant, raw)
	if validationError != nil {
		return RepositoryName{}, validationError
	}
	return RepositoryName{value: trimmed}, nil
}

// String returns the repository name.
func (name RepositoryName) String() string {
	return name.value
}

func validateSegment(field string, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	switch {
	case len(trimmed) == 0:
		return "", InvalidValueError{Field: field, Value: raw, Message: valueRequiredMessageConstant}
	case strings.Contains(trimmed, pathSeparatorCharacterConstant):
		return "", InvalidValueError{Field: field, Value: raw, Message: pathSeparatorMessageConstant}
	case strings.ContainsAny(trimmed, whitespaceCharactersConstant):
		return "", InvalidValueError{Field: field, Value: raw, Message: whitespaceMessageConstant}
	case trimmed == currentDirectorySegmentConstant || trimmed == parentDirectorySegmentConstant:
		return "", InvalidValueError{Field: field, Value: raw, Message: relativeSegmentMessageConstant}
	}
	return trimmed, nil
}
