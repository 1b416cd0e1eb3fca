package validation

import (
	"errors"
	"testing"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerophilia/aerophilia-go/internal/model"
	"github.com/aerophilia/aerophilia-go/internal/wizard"
)

func fieldErrors(t *testing.T, err error) ozzo.Errors {
	t.Helper()
	require.Error(t, err)
	var errs ozzo.Errors
	require.True(t, errors.As(err, &errs), "expected ozzo.Errors, got %T", err)
	return errs
}

func completeForm() wizard.FormData {
	return wizard.FormData{
		FirstName:       "Asha",
		LastName:        "Rao",
		Email:           "asha@example.com",
		Phone:           "9876543210",
		College:         "RVCE",
		Department:      "Aerospace",
		YearOfStudy:     3,
		EventID:         "drone-racing",
		ParticipantType: wizard.Individual,
		PaymentMethod:   wizard.PayUPI,
		EmergencyContact: wizard.EmergencyContact{
			Name:  "Ravi Rao",
			Phone: "+919876500000",
		},
		TermsAccepted: true,
	}
}

func TestLogin(t *testing.T) {
	assert.NoError(t, Login(model.LoginCredentials{Email: "a@b.com", Password: "x"}))

	errs := fieldErrors(t, Login(model.LoginCredentials{Email: "not-an-email"}))
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestSignUp(t *testing.T) {
	good := model.SignUpCredentials{
		Email:           "new@example.com",
		Password:        "s3cret-pass",
		ConfirmPassword: "s3cret-pass",
		FirstName:       "New",
		LastName:        "User",
	}
	assert.NoError(t, SignUp(good))

	tests := []struct {
		name  string
		edit  func(*model.SignUpCredentials)
		field string
	}{
		{name: "short password", edit: func(c *model.SignUpCredentials) { c.Password, c.ConfirmPassword = "short", "short" }, field: "password"},
		{name: "mismatch", edit: func(c *model.SignUpCredentials) { c.ConfirmPassword = "other-pass" }, field: "confirmPassword"},
		{name: "missing first name", edit: func(c *model.SignUpCredentials) { c.FirstName = "" }, field: "firstName"},
		{name: "bad phone", edit: func(c *model.SignUpCredentials) { c.Phone = "12345" }, field: "phone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := good
			tt.edit(&c)
			assert.Contains(t, fieldErrors(t, SignUp(c)), tt.field)
		})
	}
}

func TestStep(t *testing.T) {
	f := completeForm()
	for step := wizard.StepPersonalInfo; step <= wizard.StepConfirmation; step++ {
		assert.NoError(t, Step(step, f), "step %d", step)
	}
	assert.NoError(t, Step(42, wizard.FormData{}))

	tests := []struct {
		name  string
		step  int
		edit  func(*wizard.FormData)
		field string
	}{
		{name: "missing phone", step: wizard.StepPersonalInfo, edit: func(f *wizard.FormData) { f.Phone = "" }, field: "phone"},
		{name: "year out of range", step: wizard.StepAcademicDetails, edit: func(f *wizard.FormData) { f.YearOfStudy = 7 }, field: "yearOfStudy"},
		{name: "no event", step: wizard.StepEventSelection, edit: func(f *wizard.FormData) { f.EventID = "" }, field: "eventId"},
		{name: "bad participant type", step: wizard.StepEventSelection, edit: func(f *wizard.FormData) { f.ParticipantType = "duo" }, field: "participantType"},
		{name: "team without name", step: wizard.StepEventSelection, edit: func(f *wizard.FormData) {
			f.ParticipantType = wizard.Team
			f.TeamMembers = []wizard.TeamMember{{Name: "B", Email: "b@example.com"}}
		}, field: "teamName"},
		{name: "team member without email", step: wizard.StepEventSelection, edit: func(f *wizard.FormData) {
			f.ParticipantType = wizard.Team
			f.TeamName = "Sky Hawks"
			f.TeamMembers = []wizard.TeamMember{{Name: "B"}}
		}, field: "teamMembers"},
		{name: "unknown payment", step: wizard.StepPayment, edit: func(f *wizard.FormData) { f.PaymentMethod = "cash" }, field: "paymentMethod"},
		{name: "terms not accepted", step: wizard.StepConfirmation, edit: func(f *wizard.FormData) { f.TermsAccepted = false }, field: "termsAccepted"},
		{name: "no emergency contact", step: wizard.StepConfirmation, edit: func(f *wizard.FormData) { f.EmergencyContact = wizard.EmergencyContact{} }, field: "emergencyContact"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := completeForm()
			tt.edit(&f)
			assert.Contains(t, fieldErrors(t, Step(tt.step, f)), tt.field)
		})
	}
}

func TestTeamNameOnlyRequiredForTeams(t *testing.T) {
	f := completeForm()
	f.TeamName = ""
	f.TeamMembers = nil
	assert.NoError(t, Step(wizard.StepEventSelection, f))
}

func TestForm(t *testing.T) {
	assert.NoError(t, Form(completeForm()))

	errs := fieldErrors(t, Form(wizard.FormData{}))
	for _, field := range []string{"firstName", "college", "eventId", "paymentMethod", "termsAccepted"} {
		assert.Contains(t, errs, field)
	}
}
