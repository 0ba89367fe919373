// Package i18n provides the built-in label catalogs for the market clock's
// presentation surfaces: countdown unit labels, open/closed status labels,
// and market display names.
package i18n

import "marketclock/internal/countdown"

// DefaultLocale is used when a requested locale has no catalog.
const DefaultLocale = "en"

// Catalog resolves localized labels by locale and key, falling back to the
// default locale for unknown locales or missing keys.
type Catalog struct {
	locales map[string]map[string]string
}

// NewCatalog returns the built-in catalog with English and Spanish labels.
func NewCatalog() *Catalog {
	return &Catalog{locales: map[string]map[string]string{
		"en": {
			"days_one":      "day",
			"days_other":    "days",
			"hours_one":     "hr",
			"hours_other":   "hrs",
			"minutes_one":   "min",
			"minutes_other": "mins",
			"seconds_one":   "sec",
			"seconds_other": "secs",

			"status_open":   "OPEN",
			"status_closed": "CLOSED",
			"opens_in":      "Opens in",
			"closes_in":     "Closes in",

			"market_london":   "London",
			"market_new_york": "New York",
			"market_tokyo":    "Tokyo",
			"market_sydney":   "Sydney",
		},
		"es": {
			"days_one":      "día",
			"days_other":    "días",
			"hours_one":     "hora",
			"hours_other":   "horas",
			"minutes_one":   "min",
			"minutes_other": "min",
			"seconds_one":   "seg",
			"seconds_other": "seg",

			"status_open":   "ABIERTO",
			"status_closed": "CERRADO",
			"opens_in":      "Abre en",
			"closes_in":     "Cierra en",

			"market_london":   "Londres",
			"market_new_york": "Nueva York",
			"market_tokyo":    "Tokio",
			"market_sydney":   "Sídney",
		},
	}}
}

// Locales returns the locales the catalog carries.
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.locales))
	for l := range c.locales {
		out = append(out, l)
	}
	return out
}

// Labels returns a countdown label function bound to the given locale.
func (c *Catalog) Labels(locale string) countdown.LabelFunc {
	return func(unit countdown.Unit, count int) string {
		suffix := "_other"
		if count == 1 {
			suffix = "_one"
		}
		return c.lookup(locale, string(unit)+suffix)
	}
}

// Status returns the open/closed status label.
func (c *Catalog) Status(locale string, open bool) string {
	if open {
		return c.lookup(locale, "status_open")
	}
	return c.lookup(locale, "status_closed")
}

// Event returns the label for the pending transition: "opens in" while the
// market is closed, "closes in" while it is open.
func (c *Catalog) Event(locale string, opening bool) string {
	if opening {
		return c.lookup(locale, "opens_in")
	}
	return c.lookup(locale, "closes_in")
}

// Name returns the market display name for a name key. Unknown keys come
// back unchanged so a misconfigured market still renders something.
func (c *Catalog) Name(locale, key string) string {
	if s := c.lookup(locale, key); s != "" {
		return s
	}
	return key
}

func (c *Catalog) lookup(locale, key string) string {
	if m, ok := c.locales[locale]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	return c.locales[DefaultLocale][key]
}
