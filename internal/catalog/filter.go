// Package catalog filters and sorts the festival event list.
package catalog

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/aerophilia/aerophilia-go/internal/model"
)

// SortKey selects the comparator.
type SortKey string

const (
	SortByName       SortKey = "name"
	SortByDate       SortKey = "date"
	SortByPrice      SortKey = "price"
	SortByPopularity SortKey = "popularity"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// DateRange is inclusive. A zero bound leaves that side open.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// PriceRange is inclusive on the registration fee. An unset bound leaves
// that side open; zero is a real bound.
type PriceRange struct {
	Min decimal.NullDecimal `json:"min"`
	Max decimal.NullDecimal `json:"max"`
}

// AtLeast is a price floor.
func AtLeast(lo decimal.Decimal) PriceRange {
	return PriceRange{Min: decimal.NewNullDecimal(lo)}
}

// AtMost is a price ceiling.
func AtMost(hi decimal.Decimal) PriceRange {
	return PriceRange{Max: decimal.NewNullDecimal(hi)}
}

// Between bounds the fee on both sides.
func Between(lo, hi decimal.Decimal) PriceRange {
	return PriceRange{Min: decimal.NewNullDecimal(lo), Max: decimal.NewNullDecimal(hi)}
}

// Filter describes which events to keep and how to order them.
type Filter struct {
	Search     string      `json:"search"`
	Category   string      `json:"category"`
	SortBy     SortKey     `json:"sortBy"`
	SortOrder  SortOrder   `json:"sortOrder"`
	DateRange  *DateRange  `json:"dateRange,omitempty"`
	PriceRange *PriceRange `json:"priceRange,omitempty"`
	// Locale drives name ordering; zero means English.
	Locale language.Tag `json:"-"`
}

// DefaultFilter sorts by date ascending and keeps everything.
func DefaultFilter() Filter {
	return Filter{SortBy: SortByDate, SortOrder: Asc}
}

// Apply returns the events matching f in f's order. events is not modified
// and the result is a deep copy that shares no slices with it.
func Apply(events []model.Event, f Filter) []model.Event {
	out := make([]model.Event, 0, len(events))
	term := strings.ToLower(f.Search)

	for _, e := range events {
		if term != "" && !matchesSearch(e, term) {
			continue
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if !inDateRange(e.Date, f.DateRange) {
			continue
		}
		if !inPriceRange(e.RegistrationFee, f.PriceRange) {
			continue
		}
		out = append(out, e.Clone())
	}

	cmp := comparator(f)
	if f.SortOrder == Desc {
		base := cmp
		cmp = func(a, b model.Event) int { return -base(a, b) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

func matchesSearch(e model.Event, term string) bool {
	if strings.Contains(strings.ToLower(e.Name), term) ||
		strings.Contains(strings.ToLower(e.Description), term) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func inDateRange(d time.Time, r *DateRange) bool {
	if r == nil {
		return true
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.Start.After(r.End) {
		return true
	}
	if !r.Start.IsZero() && d.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && d.After(r.End) {
		return false
	}
	return true
}

func inPriceRange(fee decimal.Decimal, r *PriceRange) bool {
	if r == nil {
		return true
	}
	if r.Min.Valid && r.Max.Valid && r.Min.Decimal.GreaterThan(r.Max.Decimal) {
		return true
	}
	if r.Min.Valid && fee.LessThan(r.Min.Decimal) {
		return false
	}
	if r.Max.Valid && fee.GreaterThan(r.Max.Decimal) {
		return false
	}
	return true
}

// comparator returns the ascending comparator for f.SortBy. Popularity is
// the exception: its base order is already most-participants-first.
func comparator(f Filter) func(a, b model.Event) int {
	switch f.SortBy {
	case SortByName:
		tag := f.Locale
		if tag == language.Und {
			tag = language.English
		}
		col := collate.New(tag)
		return func(a, b model.Event) int {
			return col.CompareString(a.Name, b.Name)
		}
	case SortByDate:
		return func(a, b model.Event) int {
			return a.Date.Compare(b.Date)
		}
	case SortByPrice:
		return func(a, b model.Event) int {
			return a.RegistrationFee.Cmp(b.RegistrationFee)
		}
	case SortByPopularity:
		return func(a, b model.Event) int {
			return b.CurrentParticipants - a.CurrentParticipants
		}
	}
	return func(model.Event, model.Event) int { return 0 }
}
