package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/aerophilia/aerophilia-go/internal/apitest"
	"github.com/aerophilia/aerophilia-go/internal/catalog"
	"github.com/aerophilia/aerophilia-go/internal/model"
	"github.com/aerophilia/aerophilia-go/internal/wizard"
)

func festivalEvents() []model.Event {
	day := func(d int) time.Time { return time.Date(2025, time.March, d, 10, 0, 0, 0, time.UTC) }
	return []model.Event{
		{ID: "drone", Name: "Drone Racing", Category: "technical", Date: day(28), RegistrationFee: decimal.NewFromInt(300), MaxParticipants: 50, CurrentParticipants: 40},
		{ID: "quiz", Name: "Aviation Quiz", Category: "quiz", Date: day(27), RegistrationFee: decimal.NewFromInt(100), IsTeamEvent: true, TeamSize: &model.TeamSize{Min: 2, Max: 3}},
		{ID: "full", Name: "Rocketry", Category: "technical", Date: day(29), RegistrationFee: decimal.NewFromInt(500), MaxParticipants: 10, CurrentParticipants: 10},
	}
}

func completeFlags() enrollFlags {
	return enrollFlags{
		firstName:      "Asha",
		lastName:       "Rao",
		email:          "asha@example.com",
		phone:          "9876543210",
		college:        "MIT",
		department:     "Aerospace",
		year:           3,
		eventID:        "drone",
		payment:        "upi",
		emergencyName:  "Ravi Rao",
		emergencyPhone: "9123456780",
		acceptTerms:    true,
	}
}

func TestRunWizardCompletesEveryStep(t *testing.T) {
	patches, err := completeFlags().patches(nil)
	require.NoError(t, err)

	p := wizard.New()
	form, err := runWizard(p, patches)
	require.NoError(t, err)

	assert.Equal(t, "drone", form.EventID)
	assert.Equal(t, wizard.Individual, form.ParticipantType)
	for step := 1; step <= p.TotalSteps(); step++ {
		assert.True(t, p.IsCompleted(step), "step %d", step)
	}
	assert.Equal(t, p.TotalSteps(), p.CurrentStep())
}

func TestRunWizardStopsAtInvalidStep(t *testing.T) {
	ef := completeFlags()
	ef.year = 9
	patches, err := ef.patches(nil)
	require.NoError(t, err)

	p := wizard.New()
	_, err = runWizard(p, patches)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, wizard.StepAcademicDetails, stepErr.Step)
	assert.Equal(t, "Academic Details", stepErr.Title)

	var fields ozzo.Errors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "yearOfStudy")

	assert.Equal(t, wizard.StepAcademicDetails, p.CurrentStep())
	assert.True(t, p.IsCompleted(wizard.StepPersonalInfo))
	assert.False(t, p.IsCompleted(wizard.StepAcademicDetails))
}

func TestPatchesPrefillFromUser(t *testing.T) {
	user := &model.User{FirstName: "Kiran", LastName: "Das", Email: "kiran@example.com", College: "IIT", YearOfStudy: 2}
	ef := enrollFlags{lastName: "Dasgupta", teamName: "Gliders", members: []string{"Meera, meera@example.com, 9000000001"}}

	patches, err := ef.patches(user)
	require.NoError(t, err)

	personal := patches[wizard.StepPersonalInfo]
	assert.Equal(t, "Kiran", *personal.FirstName)
	assert.Equal(t, "Dasgupta", *personal.LastName, "flag wins")
	assert.Nil(t, personal.Phone)
	assert.Equal(t, 2, *patches[wizard.StepAcademicDetails].YearOfStudy)

	selection := patches[wizard.StepEventSelection]
	assert.Equal(t, wizard.Team, *selection.ParticipantType)
	assert.Equal(t, []wizard.TeamMember{{Name: "Meera", Email: "meera@example.com", Phone: "9000000001"}}, selection.TeamMembers)

	_, err = enrollFlags{members: []string{"just-a-name"}}.patches(nil)
	assert.Error(t, err)
}

func TestCheckEvent(t *testing.T) {
	events := festivalEvents()

	e, err := checkEvent(events, wizard.FormData{EventID: "drone", ParticipantType: wizard.Individual})
	require.NoError(t, err)
	assert.Equal(t, "Drone Racing", e.Name)

	_, err = checkEvent(events, wizard.FormData{EventID: "missing"})
	assert.ErrorIs(t, err, errUnknownEvent)

	_, err = checkEvent(events, wizard.FormData{EventID: "full"})
	assert.ErrorIs(t, err, errEventFull)

	team := wizard.FormData{EventID: "quiz", ParticipantType: wizard.Team}
	_, err = checkEvent(events, team)
	assert.ErrorIs(t, err, errTeamSize, "registrant alone is below the minimum")

	team.TeamMembers = []wizard.TeamMember{{Name: "A", Email: "a@example.com"}}
	_, err = checkEvent(events, team)
	assert.NoError(t, err)
}

func TestEventFlagOptions(t *testing.T) {
	ef := eventFlags{category: "technical", sortBy: "price", order: "desc", from: "2025-03-28", to: "2025-03-28", maxPrice: "400"}
	opts, err := ef.options(time.UTC, language.English)
	require.NoError(t, err)

	engine := catalog.NewEngine(festivalEvents())
	engine.UpdateFilter(opts...)
	got := engine.Filtered()
	require.Len(t, got, 1)
	assert.Equal(t, "drone", got[0].ID, "--to covers the whole day")

	opts, err = eventFlags{minPrice: "200", sortBy: "price"}.options(time.UTC, language.English)
	require.NoError(t, err)
	engine = catalog.NewEngine(festivalEvents())
	engine.UpdateFilter(opts...)
	got = engine.Filtered()
	require.Len(t, got, 2, "--min-price alone is a floor")
	assert.Equal(t, "drone", got[0].ID)
	assert.Equal(t, "full", got[1].ID)

	_, err = eventFlags{order: "sideways"}.options(time.UTC, language.English)
	assert.Error(t, err)
	_, err = eventFlags{from: "28/03/2025"}.options(time.UTC, language.English)
	assert.Error(t, err)
	_, err = eventFlags{minPrice: "cheap"}.options(time.UTC, language.English)
	assert.Error(t, err)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	var a *app
	root := newRootCmd(&a)
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	if a != nil {
		a.close()
	}
	return out.String(), err
}

func TestCommandsShareStoredSession(t *testing.T) {
	backend := apitest.New(apitest.WithEvents(festivalEvents()...))
	backend.AddUser(model.User{Email: "asha@example.com", FirstName: "Asha", LastName: "Rao", Phone: "9876543210"}, "correct-horse")
	srv := backend.Start()
	t.Cleanup(srv.Close)

	t.Setenv("API_BASE_URL", srv.URL)
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("STORE_DSN", filepath.Join(t.TempDir(), "session.db"))
	t.Setenv("LOG_LEVEL", "error")

	out, err := run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")

	_, err = run(t, "login", "--email", "asha@example.com", "--password", "wrong-horse")
	assert.EqualError(t, err, "Invalid email or password")

	out, err = run(t, "login", "--email", "asha@example.com", "--password", "correct-horse")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome back, Asha Rao")

	out, err = run(t, "profile", "--department", "Aerospace", "--year", "3", "--college", "MIT")
	require.NoError(t, err)
	assert.Contains(t, out, "Aerospace")

	out, err = run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Asha Rao <asha@example.com>")
	assert.Contains(t, out, "department: Aerospace (year 3)")

	out, err = run(t, "events", "--sort", "name")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Aviation Quiz"), strings.Index(out, "Drone Racing"))

	out, err = run(t, "enroll", "--event", "drone", "--payment", "card",
		"--emergency-name", "Ravi Rao", "--emergency-phone", "9123456780", "--accept-terms")
	require.NoError(t, err)
	assert.Contains(t, out, "Ready to register for Drone Racing")

	_, err = run(t, "google")
	assert.EqualError(t, err, "Google login coming soon")

	_, err = run(t, "logout")
	require.NoError(t, err)
	out, err = run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")
}
