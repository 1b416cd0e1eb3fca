package catalog

import (
	"sync"

	"golang.org/x/text/language"

	"github.com/aerophilia/aerophilia-go/internal/model"
)

// FilterOption mutates the engine's filter.
type FilterOption func(*Filter)

func WithSearch(s string) FilterOption { return func(f *Filter) { f.Search = s } }

func WithCategory(c string) FilterOption { return func(f *Filter) { f.Category = c } }

func WithSort(by SortKey, order SortOrder) FilterOption {
	return func(f *Filter) { f.SortBy, f.SortOrder = by, order }
}

func WithDateRange(r DateRange) FilterOption { return func(f *Filter) { f.DateRange = &r } }

func WithoutDateRange() FilterOption { return func(f *Filter) { f.DateRange = nil } }

func WithPriceRange(r PriceRange) FilterOption { return func(f *Filter) { f.PriceRange = &r } }

func WithoutPriceRange() FilterOption { return func(f *Filter) { f.PriceRange = nil } }

// WithLocale sets the collation used for name sorting.
func WithLocale(tag language.Tag) FilterOption { return func(f *Filter) { f.Locale = tag } }

// Engine keeps an event list, a filter and a free-text query, and holds the
// filtered result recomputed after every change.
type Engine struct {
	mu       sync.RWMutex
	events   []model.Event
	filter   Filter
	query    string
	filtered []model.Event
}

// NewEngine starts with DefaultFilter over events.
func NewEngine(events []model.Event) *Engine {
	e := &Engine{filter: DefaultFilter()}
	e.SetEvents(events)
	return e
}

// SetEvents replaces the source list.
func (e *Engine) SetEvents(events []model.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = cloneEvents(events)
	e.recompute()
}

// UpdateFilter applies opts on top of the current filter.
func (e *Engine) UpdateFilter(opts ...FilterOption) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, opt := range opts {
		opt(&e.filter)
	}
	e.recompute()
}

// SetSearchQuery sets the query used when the filter's own search is empty.
func (e *Engine) SetSearchQuery(q string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.query = q
	e.recompute()
}

// ClearFilters restores DefaultFilter and drops the search query.
func (e *Engine) ClearFilters() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filter = DefaultFilter()
	e.query = ""
	e.recompute()
}

// Filter returns the current filter.
func (e *Engine) Filter() Filter {
	e.mu.RLock()
	defer e.mu.RUnlock()
	f := e.filter
	if f.DateRange != nil {
		r := *f.DateRange
		f.DateRange = &r
	}
	if f.PriceRange != nil {
		r := *f.PriceRange
		f.PriceRange = &r
	}
	return f
}

// SearchQuery returns the free-text query.
func (e *Engine) SearchQuery() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.query
}

// Events returns a deep copy of the source list.
func (e *Engine) Events() []model.Event {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneEvents(e.events)
}

// Filtered returns a deep copy of the current result.
func (e *Engine) Filtered() []model.Event {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := cloneEvents(e.filtered)
	if out == nil {
		out = []model.Event{}
	}
	return out
}

func cloneEvents(events []model.Event) []model.Event {
	if events == nil {
		return nil
	}
	out := make([]model.Event, len(events))
	for i, ev := range events {
		out[i] = ev.Clone()
	}
	return out
}

func (e *Engine) recompute() {
	f := e.filter
	if f.Search == "" {
		f.Search = e.query
	}
	e.filtered = Apply(e.events, f)
}
