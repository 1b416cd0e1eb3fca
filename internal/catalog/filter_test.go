package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/aerophilia/aerophilia-go/internal/model"
)

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 10, 0, 0, 0, time.UTC)
}

func names(events []model.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Name
	}
	return out
}

func sampleEvents() []model.Event {
	return []model.Event{
		{ID: "1", Name: "Drone Racing", Description: "FPV race through gates", Category: "technical", Tags: []string{"drones", "speed"}, Date: day(28), RegistrationFee: decimal.NewFromInt(300), CurrentParticipants: 40},
		{ID: "2", Name: "Aeromodelling", Description: "Build and fly a glider", Category: "technical", Tags: []string{"gliders"}, Date: day(27), RegistrationFee: decimal.NewFromInt(500), CurrentParticipants: 25},
		{ID: "3", Name: "Paper Plane", Description: "Longest flight wins", Category: "fun", Tags: []string{"origami"}, Date: day(29), RegistrationFee: decimal.Zero, CurrentParticipants: 90},
		{ID: "4", Name: "Quiz", Description: "Aviation trivia", Category: "quiz", Date: day(27), RegistrationFee: decimal.NewFromInt(100), CurrentParticipants: 60},
	}
}

func TestFilterComposition(t *testing.T) {
	events := []model.Event{
		{ID: "a", Name: "Alpha", Category: "c1", RegistrationFee: decimal.NewFromInt(100)},
		{ID: "b", Name: "Beta", Category: "c2", RegistrationFee: decimal.NewFromInt(200)},
	}

	byCategory := Apply(events, Filter{Category: "c1"})
	assert.Equal(t, []string{"Alpha"}, names(byCategory))

	assert.Empty(t, Apply(byCategory, Filter{Search: "beta"}))
}

func TestSortByName(t *testing.T) {
	events := []model.Event{{ID: "z", Name: "Zeta"}, {ID: "a", Name: "Alpha"}}

	assert.Equal(t, []string{"Alpha", "Zeta"}, names(Apply(events, Filter{SortBy: SortByName, SortOrder: Asc})))
	assert.Equal(t, []string{"Zeta", "Alpha"}, names(Apply(events, Filter{SortBy: SortByName, SortOrder: Desc})))
}

func TestSortByNameIsLocaleAware(t *testing.T) {
	events := []model.Event{{Name: "zulu"}, {Name: "Élan"}, {Name: "echo"}}

	got := names(Apply(events, Filter{SortBy: SortByName, SortOrder: Asc}))
	assert.Equal(t, []string{"echo", "Élan", "zulu"}, got)

	got = names(Apply(events, Filter{SortBy: SortByName, SortOrder: Asc, Locale: language.French}))
	assert.Equal(t, "zulu", got[2])
}

func TestSortByPopularityKeepsInvertedBase(t *testing.T) {
	events := []model.Event{
		{ID: "low", Name: "Low", CurrentParticipants: 10},
		{ID: "high", Name: "High", CurrentParticipants: 50},
	}

	asc := Apply(events, Filter{SortBy: SortByPopularity, SortOrder: Asc})
	assert.Equal(t, []int{50, 10}, []int{asc[0].CurrentParticipants, asc[1].CurrentParticipants})

	desc := Apply(events, Filter{SortBy: SortByPopularity, SortOrder: Desc})
	assert.Equal(t, []int{10, 50}, []int{desc[0].CurrentParticipants, desc[1].CurrentParticipants})
}

func TestSortByDateAndPrice(t *testing.T) {
	events := sampleEvents()

	byDate := Apply(events, Filter{SortBy: SortByDate, SortOrder: Asc})
	assert.Equal(t, []string{"Aeromodelling", "Quiz", "Drone Racing", "Paper Plane"}, names(byDate), "ties keep input order")

	byPrice := Apply(events, Filter{SortBy: SortByPrice, SortOrder: Desc})
	assert.Equal(t, []string{"Aeromodelling", "Drone Racing", "Quiz", "Paper Plane"}, names(byPrice))
}

func TestUnknownSortKeepsOrder(t *testing.T) {
	events := sampleEvents()
	got := Apply(events, Filter{SortBy: "rating", SortOrder: Desc})
	assert.Equal(t, names(events), names(got))
}

func TestSearchMatchesNameDescriptionAndTags(t *testing.T) {
	events := sampleEvents()

	assert.Equal(t, []string{"Drone Racing"}, names(Apply(events, Filter{Search: "DRONE"})))
	assert.Equal(t, []string{"Aeromodelling"}, names(Apply(events, Filter{Search: "glider"})))
	assert.Equal(t, []string{"Paper Plane"}, names(Apply(events, Filter{Search: "origami"})))
	assert.Len(t, Apply(events, Filter{Search: ""}), 4)
}

func TestRanges(t *testing.T) {
	events := sampleEvents()

	got := Apply(events, Filter{DateRange: &DateRange{Start: day(27), End: day(28)}, SortBy: SortByDate})
	assert.Equal(t, []string{"Aeromodelling", "Quiz", "Drone Racing"}, names(got), "bounds are inclusive")

	got = Apply(events, Filter{DateRange: &DateRange{Start: day(29)}})
	assert.Equal(t, []string{"Paper Plane"}, names(got), "open end")

	price := func(r PriceRange) []string {
		return names(Apply(events, Filter{PriceRange: &r, SortBy: SortByPrice}))
	}
	assert.Equal(t, []string{"Quiz", "Drone Racing"}, price(Between(decimal.NewFromInt(100), decimal.NewFromInt(300))))
	assert.Equal(t, []string{"Drone Racing", "Aeromodelling"}, price(AtLeast(decimal.NewFromInt(150))), "floor only")
	assert.Equal(t, []string{"Paper Plane", "Quiz"}, price(AtMost(decimal.NewFromInt(150))), "ceiling only")
	assert.Equal(t, []string{"Paper Plane"}, price(AtMost(decimal.Zero)), "zero is a real bound")
	assert.Len(t, price(PriceRange{}), 4, "no bounds")
	assert.Len(t, price(Between(decimal.NewFromInt(500), decimal.NewFromInt(1))), 4, "inverted range is ignored")

	invertedDates := Apply(events, Filter{DateRange: &DateRange{Start: day(30), End: day(1)}})
	assert.Len(t, invertedDates, 4)
}

func TestApplyIsPureAndDeterministic(t *testing.T) {
	events := sampleEvents()
	before := names(events)
	f := Filter{Search: "a", SortBy: SortByPopularity, SortOrder: Desc}

	first := Apply(events, f)
	second := Apply(events, f)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
	assert.Equal(t, before, names(events), "source order untouched")

	if len(first) > 0 {
		first[0].Name = "mutated"
		assert.NotEqual(t, "mutated", events[0].Name)
	}
}

func TestApplyResultSharesNoSlices(t *testing.T) {
	events := sampleEvents()
	events[0].Prizes = []model.Prize{{Position: "1st", Amount: decimal.NewFromInt(5000)}}
	events[0].TeamSize = &model.TeamSize{Min: 1, Max: 2}

	out := Apply(events, Filter{Search: "drone"})
	require.Len(t, out, 1)
	out[0].Tags[0] = "changed"
	out[0].Prizes[0].Position = "changed"
	out[0].TeamSize.Max = 9

	assert.Equal(t, "drones", events[0].Tags[0])
	assert.Equal(t, "1st", events[0].Prizes[0].Position)
	assert.Equal(t, 2, events[0].TeamSize.Max)
}

func TestApplyNilEvents(t *testing.T) {
	got := Apply(nil, DefaultFilter())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
