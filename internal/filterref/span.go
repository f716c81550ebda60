package filterref

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	spanSeparatorConstant           = ":"
	dayUnitConstant                 = 'd'
	weekUnitConstant                = 'w'
	monthUnitConstant               = 'm'
	yearUnitConstant                = 'y'
	dayDurationConstant             = 24 * time.Hour
	weekDurationConstant            = 7 * dayDurationConstant
	weeksPerMonthConstant           = 4
	weeksPerYearConstant            = 52
	spanValueTypeConstant           = "span"
	invalidSpanTemplateConstant     = "span %q rejected (%v)"
	tooManyBoundsMessageConstant    = "expected at most one separator"
	invalidDurationTemplateConstant = "invalid duration %q (expected <count><d|w|m|y>)"
	emptySpanMessageConstant        = "span must not be empty"
	invertedSpanMessageConstant     = "newest bound must be shorter than oldest bound"
)

// ErrInvalidSpan indicates a span that cannot be parsed.
var ErrInvalidSpan = errors.New("invalid span")

// Span is an age window "[newest:]oldest". A commit falls inside when it is younger than
// Oldest and older than Newest.
type Span struct {
	Newest time.Duration
	Oldest time.Duration
	text   string
}

// DefaultSpan is six months.
func DefaultSpan() Span {
	span, _ := ParseSpan(defaultSpanTextConstant)
	return span
}

// ParseSpan reads "oldest" or "newest:oldest" where each bound is <count><unit> with units
// d (day), w (week), m (4 weeks) and y (52 weeks).
func ParseSpan(value string) (Span, error) {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return Span{}, errors.Wrap(ErrInvalidSpan, emptySpanMessageConstant)
	}

	parts := strings.Split(trimmed, spanSeparatorConstant)
	span := Span{text: trimmed}
	var parseError error
	switch len(parts) {
	case 1:
		span.Oldest, parseError = parseDuration(parts[0])
	case 2:
		span.Newest, parseError = parseDuration(parts[0])
		if parseError == nil {
			span.Oldest, parseError = parseDuration(parts[1])
		}
	default:
		return Span{}, invalidSpan(value, errors.New(tooManyBoundsMessageConstant))
	}
	if parseError != nil {
		return Span{}, invalidSpan(value, parseError)
	}
	if span.Newest >= span.Oldest {
		return Span{}, invalidSpan(value, errors.New(invertedSpanMessageConstant))
	}
	return span, nil
}

func invalidSpan(value string, cause error) error {
	return errors.Wrapf(ErrInvalidSpan, invalidSpanTemplateConstant, value, cause)
}

func parseDuration(value string) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) < 2 {
		return 0, errors.Newf(invalidDurationTemplateConstant, value)
	}
	count, countError := strconv.Atoi(trimmed[:len(trimmed)-1])
	if countError != nil || count < 0 {
		return 0, errors.Newf(invalidDurationTemplateConstant, value)
	}

	var unit time.Duration
	switch trimmed[len(trimmed)-1] {
	case dayUnitConstant:
		unit = dayDurationConstant
	case weekUnitConstant:
		unit = weekDurationConstant
	case monthUnitConstant:
		unit = weeksPerMonthConstant * weekDurationConstant
	case yearUnitConstant:
		unit = weeksPerYearConstant * weekDurationConstant
	default:
		return 0, errors.Newf(invalidDurationTemplateConstant, value)
	}
	if int64(count) > math.MaxInt64/int64(unit) {
		return 0, errors.Newf(invalidDurationTemplateConstant, value)
	}
	return time.Duration(count) * unit, nil
}

// Contains reports whether instant lies strictly between now-Oldest and now-Newest.
func (span Span) Contains(now time.Time, instant time.Time) bool {
	return now.Add(-span.Oldest).Before(instant) && instant.Before(now.Add(-span.Newest))
}

// String returns the span as written.
func (span Span) String() string {
	return span.text
}

// UnmarshalText lets configuration decoding read spans from strings.
func (span *Span) UnmarshalText(text []byte) error {
	parsed, parseError := ParseSpan(string(text))
	if parseError != nil {
		return parseError
	}
	*span = parsed
	return nil
}

// MarshalText renders the span as written.
func (span Span) MarshalText() ([]byte, error) {
	return []byte(span.text), nil
}

// Set implements pflag.Value.
func (span *Span) Set(value string) error {
	return span.UnmarshalText([]byte(value))
}

// Type implements pflag.Value.
func (span *Span) Type() string {
	return spanValueTypeConstant
}
