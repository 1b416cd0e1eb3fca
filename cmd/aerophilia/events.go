package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/aerophilia/aerophilia-go/internal/catalog"
	"github.com/aerophilia/aerophilia-go/internal/countdown"
	"github.com/aerophilia/aerophilia-go/internal/model"
)

const dateLayout = "2006-01-02"

type eventFlags struct {
	search   string
	category string
	sortBy   string
	order    string
	from     string
	to       string
	minPrice string
	maxPrice string
}

// options turns command-line flags into engine filter options. Dates are
// whole days in loc: --to includes everything up to the end of that day.
func (ef eventFlags) options(loc *time.Location, locale language.Tag) ([]catalog.FilterOption, error) {
	opts := []catalog.FilterOption{
		catalog.WithSearch(ef.search),
		catalog.WithCategory(ef.category),
		catalog.WithLocale(locale),
	}

	if ef.sortBy != "" || ef.order != "" {
		by, order := catalog.SortKey(ef.sortBy), catalog.SortOrder(ef.order)
		if by == "" {
			by = catalog.SortByDate
		}
		if order == "" {
			order = catalog.Asc
		}
		if order != catalog.Asc && order != catalog.Desc {
			return nil, fmt.Errorf("invalid --order %q: want asc or desc", ef.order)
		}
		opts = append(opts, catalog.WithSort(by, order))
	}

	if ef.from != "" || ef.to != "" {
		var r catalog.DateRange
		if ef.from != "" {
			start, err := time.ParseInLocation(dateLayout, ef.from, loc)
			if err != nil {
				return nil, fmt.Errorf("invalid --from: %w", err)
			}
			r.Start = start
		}
		if ef.to != "" {
			end, err := time.ParseInLocation(dateLayout, ef.to, loc)
			if err != nil {
				return nil, fmt.Errorf("invalid --to: %w", err)
			}
			r.End = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		opts = append(opts, catalog.WithDateRange(r))
	}

	if ef.minPrice != "" || ef.maxPrice != "" {
		var r catalog.PriceRange
		if ef.minPrice != "" {
			v, err := decimal.NewFromString(ef.minPrice)
			if err != nil {
				return nil, fmt.Errorf("invalid --min-price: %w", err)
			}
			r.Min = decimal.NewNullDecimal(v)
		}
		if ef.maxPrice != "" {
			v, err := decimal.NewFromString(ef.maxPrice)
			if err != nil {
				return nil, fmt.Errorf("invalid --max-price: %w", err)
			}
			r.Max = decimal.NewNullDecimal(v)
		}
		opts = append(opts, catalog.WithPriceRange(r))
	}

	return opts, nil
}

func newEventsCmd(getApp func() *app) *cobra.Command {
	var (
		ef    eventFlags
		query string
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List festival events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			opts, err := ef.options(a.cfg.FestivalStart.Location(), a.cfg.Language())
			if err != nil {
				return err
			}

			events, err := a.api.ListEvents(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch events: %w", err)
			}

			engine := catalog.NewEngine(events)
			engine.SetSearchQuery(query)
			engine.UpdateFilter(opts...)
			printEvents(cmd.OutOrStdout(), engine.Filtered())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&query, "query", "q", "", "free-text search, used when --search is empty")
	f.StringVar(&ef.search, "search", "", "search name, description and tags")
	f.StringVar(&ef.category, "category", "", "exact category")
	f.StringVar(&ef.sortBy, "sort", "", "name, date, price or popularity")
	f.StringVar(&ef.order, "order", "", "asc or desc")
	f.StringVar(&ef.from, "from", "", "earliest date, YYYY-MM-DD")
	f.StringVar(&ef.to, "to", "", "latest date, YYYY-MM-DD")
	f.StringVar(&ef.minPrice, "min-price", "", "lowest registration fee")
	f.StringVar(&ef.maxPrice, "max-price", "", "highest registration fee")
	return cmd
}

func printEvents(w io.Writer, events []model.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events match")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tDATE\tFEE\tSPOTS")
	for _, e := range events {
		spots := "open"
		if left := e.SpotsLeft(); left >= 0 {
			spots = fmt.Sprint(left)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Name, e.Category, e.Date.Format("Jan 02 15:04"), e.RegistrationFee.StringFixed(2), spots)
	}
	tw.Flush()
}

func newCountdownCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "countdown",
		Short: "Time left until the festival starts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := countdown.Until(time.Now(), getApp().cfg.FestivalStart)
			if r.Expired {
				fmt.Fprintln(cmd.OutOrStdout(), "Aerophilia 2025 is live")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), r)
			return nil
		},
	}
}
