package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"golang.org/x/text/number"

	"moneyboard/internal/core"
)

// DefaultLocale matches the locale the tracker was first built for.
const DefaultLocale = "es-AR"

var (
	supported = []language.Tag{language.English, language.Spanish}
	matcher   = language.NewMatcher(supported)
	messages  = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, table := range tables {
		for key, msg := range table {
			// Only fails on malformed tags, which the table never holds.
			_ = b.SetString(tag, string(key), msg)
		}
	}
	return b
}

// Translator resolves message keys for one locale.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// NewTranslator picks the closest supported language for locale; unknown
// locales fall back to English.
func NewTranslator(locale string) *Translator {
	tag := matchSupported(locale)
	return &Translator{tag: tag, printer: message.NewPrinter(tag, message.Catalog(messages))}
}

func matchSupported(locale string) language.Tag {
	requested, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	_, idx, conf := matcher.Match(requested)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

// Language returns the matched message language.
func (t *Translator) Language() language.Tag {
	return t.tag
}

// T returns the message for key; unknown keys render as the key itself.
func (t *Translator) T(key Key) string {
	return t.printer.Sprintf(message.Key(string(key), string(key)))
}

// Formatter renders amounts and dates for one locale and currency. It never
// mutates the values it formats.
type Formatter struct {
	tag        language.Tag
	printer    *message.Printer
	unit       currency.Unit
	symbol     string
	dateLayout string
}

// NewFormatter builds a formatter. An empty currency code selects the
// locale region's currency.
func NewFormatter(locale, currencyCode string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}

	var unit currency.Unit
	if strings.TrimSpace(currencyCode) != "" {
		unit, err = currency.ParseISO(strings.ToUpper(strings.TrimSpace(currencyCode)))
		if err != nil {
			return nil, fmt.Errorf("parse currency %q: %w", currencyCode, err)
		}
	} else {
		region, _ := tag.Region()
		var ok bool
		if unit, ok = currency.FromRegion(region); !ok {
			return nil, fmt.Errorf("no currency for locale %q", locale)
		}
	}

	printer := message.NewPrinter(tag)
	return &Formatter{
		tag:        tag,
		printer:    printer,
		unit:       unit,
		symbol:     strings.TrimSpace(printer.Sprint(currency.NarrowSymbol(unit))),
		dateLayout: dateLayoutFor(tag),
	}, nil
}

// MustFormatter is NewFormatter for known-good constant arguments.
func MustFormatter(locale, currencyCode string) *Formatter {
	f, err := NewFormatter(locale, currencyCode)
	if err != nil {
		panic(err)
	}
	return f
}

// Currency returns the ISO code of the formatter's currency.
func (f *Formatter) Currency() string {
	return f.unit.String()
}

// Money renders m with the currency symbol and the locale's grouping and
// decimal separators, always with two decimals. Symbol and digits are
// separated by one ASCII space in every locale.
func (f *Formatter) Money(m core.Money) string {
	sign := ""
	if m.IsNegative() {
		sign = "-"
	}
	// Display only; stored amounts stay decimal.
	value := m.Abs().Round(2).InexactFloat64()
	digits := f.printer.Sprint(number.Decimal(value, number.Scale(2)))
	return sign + f.symbol + " " + digits
}

// Date renders d in the locale's short calendar form, or "" when absent.
func (f *Formatter) Date(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(f.dateLayout)
}

// dateLayoutFor returns the numeric short date pattern for tag.
func dateLayoutFor(tag language.Tag) string {
	base, _ := tag.Base()
	region, _ := tag.Region()
	switch base.String() {
	case "en":
		if region.String() == "US" || region.String() == "ZZ" {
			return "1/2/2006"
		}
		return "02/01/2006"
	case "de":
		return "2.1.2006"
	case "ja", "zh", "ko":
		return "2006/1/2"
	default:
		return "2/1/2006"
	}
}
