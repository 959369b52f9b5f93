// Package datefmt renders panel timestamps as Solar Hijri dates with
// Western digits.
package datefmt

import (
	"strings"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Placeholder is returned for an absent timestamp.
const Placeholder = "-"

// Formatter converts Unix-millisecond timestamps into "year/month/day" in
// the Persian calendar.
type Formatter struct {
	loc     *time.Location
	printer *message.Printer
}

// New returns a Formatter that interprets timestamps in loc. A nil loc
// means time.Local.
func New(loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.Local
	}
	return &Formatter{
		loc:     loc,
		printer: message.NewPrinter(language.Persian),
	}
}

// TS2String formats ms (Unix milliseconds). Zero is treated as absent and
// yields Placeholder, so the epoch itself is never rendered. Instants before
// Gregorian year 1097 are outside the calendar conversion and render as
// "0/0/0".
func (f *Formatter) TS2String(ms int64) string {
	if ms == 0 {
		return Placeholder
	}
	return NormalizeDigits(f.Localized(time.UnixMilli(ms)))
}

// Localized returns the Persian-locale date for t as the locale prints it,
// which may use Eastern Arabic-Indic digits.
func (f *Formatter) Localized(t time.Time) string {
	pt := ptime.New(t.In(f.loc))
	return f.printer.Sprintf("%v/%v/%v",
		number.Decimal(pt.Year(), number.NoSeparator()),
		number.Decimal(int(pt.Month()), number.NoSeparator()),
		number.Decimal(pt.Day(), number.NoSeparator()),
	)
}

// NormalizeDigits replaces Arabic-Indic (U+0660..U+0669) and Extended
// Arabic-Indic (U+06F0..U+06F9) digits with ASCII digits. Both blocks start
// at a code point ending in 0, so the low nibble is the digit value.
func NormalizeDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if IsEasternDigit(r) {
			return '0' + (r & 0xF)
		}
		return r
	}, s)
}

// IsEasternDigit reports whether r belongs to either Eastern digit block.
func IsEasternDigit(r rune) bool {
	return (r >= '٠' && r <= '٩') || (r >= '۰' && r <= '۹')
}
