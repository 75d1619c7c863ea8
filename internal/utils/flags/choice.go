package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderTemplateConstant      = "<%s>"
	choiceSeparatorConstant                = "|"
	choiceUsageTemplateConstant            = "%s %s"
	unsupportedChoiceErrorTemplateConstant = "unsupported value %q for --%s (expected one of %s)"
)

// ChoiceUsage renders flag usage listing the accepted values, with the default upper-cased.
func ChoiceUsage(defaultChoice string, choices []string, description string) string {
	normalizedDefault := normalizeChoice(defaultChoice)
	displayed := make([]string, 0, len(choices))
	for _, choice := range distinctChoices(choices) {
		if choice == normalizedDefault {
			displayed = append(displayed, strings.ToUpper(choice))
			continue
		}
		displayed = append(displayed, choice)
	}
	placeholder := fmt.Sprintf(choicePlaceholderTemplateConstant, strings.Join(displayed, choiceSeparatorConstant))
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return placeholder
	}
	return fmt.Sprintf(choiceUsageTemplateConstant, placeholder, trimmedDescription)
}

// ValidateChoice accepts empty values and any case-insensitive match among choices.
func ValidateChoice(flagName string, value string, choices []string) error {
	normalizedValue := normalizeChoice(value)
	if len(normalizedValue) == 0 {
		return nil
	}
	accepted := distinctChoices(choices)
	for _, choice := range accepted {
		if choice == normalizedValue {
			return nil
		}
	}
	return fmt.Errorf(unsupportedChoiceErrorTemplateConstant, value, flagName, strings.Join(accepted, ", "))
}

func distinctChoices(choices []string) []string {
	distinct := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		normalizedChoice := normalizeChoice(choice)
		if len(normalizedChoice) == 0 {
			continue
		}
		if _, exists := seen[normalizedChoice]; exists {
			continue
		}
		seen[normalizedChoice] = struct{}{}
		distinct = append(distinct, normalizedChoice)
	}
	return distinct
}

func normalizeChoice(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
