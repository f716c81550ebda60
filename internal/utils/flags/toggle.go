package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue         = "true"
	toggleFalseCanonicalValue        = "false"
	toggleParseErrorTemplate         = "invalid toggle value %q"
	toggleTruePlaceholderConstant    = "<YES|no>"
	toggleFalsePlaceholderConstant   = "<yes|NO>"
	toggleUsageTemplateConstant      = "`%s` %s"
	toggleUsageEmptyTemplateConstant = "`%s`"
	longFlagPrefixConstant           = "--"
	shortFlagPrefixConstant          = "-"
	flagValueSeparatorConstant       = "="
	argumentTerminatorConstant       = "--"
	toggleValueTypeConstant          = "bool"
)

var (
	toggleLiterals = map[string]bool{
		"true": true, "yes": true, "on": true, "1": true, "t": true, "y": true,
		"false": false, "no": false, "off": false, "0": false, "f": false, "n": false,
	}

	toggleRegistryMutex sync.RWMutex
	toggleNames         = map[string]struct{}{}
	toggleShorthands    = map[string]struct{}{}
)

// AddToggleFlag registers a boolean flag that also accepts yes/no style values, so
// "--fetch no" disables a feature whose default is on.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	value := &toggleValue{target: target, current: defaultValue}
	if target != nil {
		*target = defaultValue
	}
	flagSet.VarP(value, name, shorthand, usage)

	flag := flagSet.Lookup(name)
	if flag == nil {
		return
	}
	flag.NoOptDefVal = toggleTrueCanonicalValue
	flag.Usage = formatToggleUsage(usage, defaultValue)

	toggleRegistryMutex.Lock()
	defer toggleRegistryMutex.Unlock()
	toggleNames[name] = struct{}{}
	if len(shorthand) > 0 {
		toggleShorthands[shorthand] = struct{}{}
	}
}

// NormalizeToggleArguments rewrites "--flag value" into "--flag=value" for registered toggles.
// The following argument is only consumed when it is a toggle literal, so positional
// arguments after a bare toggle are left alone.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == argumentTerminatorConstant {
			normalized = append(normalized, arguments[index:]...)
			break
		}

		if isBareToggle(current) && index+1 < len(arguments) {
			if _, literal := lookupToggleLiteral(arguments[index+1]); literal {
				normalized = append(normalized, current+flagValueSeparatorConstant+arguments[index+1])
				index++
				continue
			}
		}
		normalized = append(normalized, current)
	}
	return normalized
}

type toggleValue struct {
	target  *bool
	current bool
}

func (value *toggleValue) Set(rawValue string) error {
	trimmedValue := strings.TrimSpace(rawValue)
	if len(trimmedValue) == 0 {
		trimmedValue = toggleTrueCanonicalValue
	}
	parsedValue, literal := lookupToggleLiteral(trimmedValue)
	if !literal {
		return errors.Newf(toggleParseErrorTemplate, rawValue)
	}

	value.current = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
	return nil
}

func (value *toggleValue) String() string {
	if value != nil && value.current {
		return toggleTrueCanonicalValue
	}
	return toggleFalseCanonicalValue
}

func (value *toggleValue) Type() string {
	return toggleValueTypeConstant
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleFalsePlaceholderConstant
	if defaultValue {
		placeholder = toggleTruePlaceholderConstant
	}
	trimmed := strings.TrimSpace(description)
	if len(trimmed) == 0 {
		return fmt.Sprintf(toggleUsageEmptyTemplateConstant, placeholder)
	}
	return fmt.Sprintf(toggleUsageTemplateConstant, placeholder, trimmed)
}

func lookupToggleLiteral(candidate string) (bool, bool) {
	parsedValue, exists := toggleLiterals[strings.ToLower(strings.TrimSpace(candidate))]
	return parsedValue, exists
}

func isBareToggle(argument string) bool {
	if strings.Contains(argument, flagValueSeparatorConstant) {
		return false
	}

	toggleRegistryMutex.RLock()
	defer toggleRegistryMutex.RUnlock()

	if strings.HasPrefix(argument, longFlagPrefixConstant) {
		_, registered := toggleNames[strings.TrimPrefix(argument, longFlagPrefixConstant)]
		return registered
	}
	if strings.HasPrefix(argument, shortFlagPrefixConstant) {
		_, registered := toggleShorthands[strings.TrimPrefix(argument, shortFlagPrefixConstant)]
		return registered
	}
	return false
}
