package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"marketclock/internal/countdown"
	"marketclock/internal/domain"
	"marketclock/internal/i18n"
	"marketclock/internal/session"
)

const version = "0.1.0"

func main() {
	locale := flag.String("locale", i18n.DefaultLocale, "label locale (en, es)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: marketclock [options] [market-id...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints the current session status of the major trading markets.\n")
		fmt.Fprintf(os.Stderr, "With no arguments all markets are shown.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("marketclock %s\n", version)
		return
	}

	markets := domain.DefaultMarkets()
	if args := flag.Args(); len(args) > 0 {
		var selected []domain.Market
		for _, id := range args {
			m, ok := marketByID(markets, id)
			if !ok {
				fmt.Fprintf(os.Stderr, "unknown market: %s\n", id)
				os.Exit(1)
			}
			selected = append(selected, m)
		}
		markets = selected
	}

	calc := session.New(session.NewZoneResolver())
	catalog := i18n.NewCatalog()
	now := time.Now()

	for _, m := range markets {
		st := calc.Compute(m, now)
		parts := countdown.Format(st.Remaining, catalog.Labels(*locale))

		labeled := make([]string, 0, len(parts))
		for _, p := range parts {
			labeled = append(labeled, p.Value+" "+p.Unit)
		}

		fmt.Printf("%-10s %-8s %s %s (%.0f%%)\n",
			catalog.Name(*locale, m.NameKey),
			catalog.Status(*locale, st.Open),
			catalog.Event(*locale, st.EventOpening),
			strings.Join(labeled, " "),
			st.Progress,
		)
	}
}

func marketByID(markets []domain.Market, id string) (domain.Market, bool) {
	for _, m := range markets {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Market{}, false
}
