package flags

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	choicePlaceholderPrefix    = "<"
	choicePlaceholderSuffix    = ">"
	choiceSeparatorLiteral     = "|"
	choiceListSeparatorLiteral = ","
	choiceUsageEmptyTemplate   = "`%s`"
	choiceUsageFullTemplate    = "`%s` %s"
	choiceInvalidTemplate      = "invalid choice %q (expected one of %s)"
	choiceValueTypeLiteral     = "string"
	choiceListValueTypeLiteral = "strings"
)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := buildChoicePlaceholder(defaultChoice, choices)
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

func buildChoicePlaceholder(defaultChoice string, choices []string) string {
	highlightedChoices := highlightDefaultChoice(defaultChoice, choices)
	return choicePlaceholderPrefix + strings.Join(highlightedChoices, choiceSeparatorLiteral) + choicePlaceholderSuffix
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	highlighted := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		if len(trimmedChoice) == 0 {
			continue
		}

		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, exists := seen[normalizedChoice]; exists {
			continue
		}

		displayValue := trimmedChoice
		if normalizedChoice == normalizedDefault && len(normalizedChoice) > 0 {
			displayValue = strings.ToUpper(trimmedChoice)
		}

		highlighted = append(highlighted, displayValue)
		seen[normalizedChoice] = struct{}{}
	}

	return highlighted
}

// ChoiceValue is a pflag.Value restricted to a fixed set of case-insensitive choices.
type ChoiceValue struct {
	current string
	choices []string
}

// NewChoiceValue constructs a ChoiceValue holding defaultChoice.
func NewChoiceValue(defaultChoice string, choices []string) *ChoiceValue {
	return &ChoiceValue{current: strings.ToLower(strings.TrimSpace(defaultChoice)), choices: choices}
}

// Set accepts one of the configured choices.
func (value *ChoiceValue) Set(rawValue string) error {
	normalized := strings.ToLower(strings.TrimSpace(rawValue))
	if !containsChoice(value.choices, normalized) {
		return errors.Newf(choiceInvalidTemplate, rawValue, strings.Join(value.choices, choiceListSeparatorLiteral))
	}
	value.current = normalized
	return nil
}

func (value *ChoiceValue) String() string {
	if value == nil {
		return ""
	}
	return value.current
}

func (value *ChoiceValue) Type() string {
	return choiceValueTypeLiteral
}

// ChoiceListValue is a comma separated pflag.Value whose elements are restricted to fixed choices.
type ChoiceListValue struct {
	current []string
	choices []string
}

// NewChoiceListValue constructs a ChoiceListValue holding defaults.
func NewChoiceListValue(defaults []string, choices []string) *ChoiceListValue {
	return &ChoiceListValue{current: append([]string(nil), defaults...), choices: choices}
}

// Set replaces the selection with the comma separated elements of rawValue.
func (value *ChoiceListValue) Set(rawValue string) error {
	selected := make([]string, 0, len(value.choices))
	for _, element := range strings.Split(rawValue, choiceListSeparatorLiteral) {
		normalized := strings.ToLower(strings.TrimSpace(element))
		if len(normalized) == 0 {
			continue
		}
		if !containsChoice(value.choices, normalized) {
			return errors.Newf(choiceInvalidTemplate, element, strings.Join(value.choices, choiceListSeparatorLiteral))
		}
		if !containsChoice(selected, normalized) {
			selected = append(selected, normalized)
		}
	}
	value.current = selected
	return nil
}

func (value *ChoiceListValue) String() string {
	if value == nil {
		return ""
	}
	return strings.Join(value.current, choiceListSeparatorLiteral)
}

func (value *ChoiceListValue) Type() string {
	return choiceListValueTypeLiteral
}

// Values returns the current selection.
func (value *ChoiceListValue) Values() []string {
	if value == nil {
		return nil
	}
	return append([]string(nil), value.current...)
}

func containsChoice(choices []string, candidate string) bool {
	for _, choice := range choices {
		if strings.EqualFold(strings.TrimSpace(choice), candidate) {
			return true
		}
	}
	return false
}
