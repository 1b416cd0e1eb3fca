// Package validation checks user input for the auth forms and each step of
// the registration wizard. Errors are ozzo-validation Errors keyed by the
// JSON field name so a form can show them next to the field.
package validation

import (
	"errors"
	"regexp"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/aerophilia/aerophilia-go/internal/model"
	"github.com/aerophilia/aerophilia-go/internal/wizard"
)

// Indian mobile numbers, optionally prefixed with +91.
var phonePattern = regexp.MustCompile(`^(\+91)?[6-9][0-9]{9}$`)

var phoneRule = ozzo.Match(phonePattern).Error("must be a valid 10-digit mobile number")

// Login validates the sign-in form.
func Login(c model.LoginCredentials) error {
	return ozzo.ValidateStruct(&c,
		ozzo.Field(&c.Email, ozzo.Required.Error("email is required"), is.EmailFormat),
		ozzo.Field(&c.Password, ozzo.Required.Error("password is required")),
	)
}

// SignUp validates the account creation form.
func SignUp(c model.SignUpCredentials) error {
	return ozzo.ValidateStruct(&c,
		ozzo.Field(&c.Email, ozzo.Required.Error("email is required"), is.EmailFormat),
		ozzo.Field(&c.Password, ozzo.Required.Error("password is required"), ozzo.RuneLength(8, 128)),
		ozzo.Field(&c.ConfirmPassword, ozzo.Required, ozzo.In(c.Password).Error("passwords do not match")),
		ozzo.Field(&c.FirstName, ozzo.Required, ozzo.RuneLength(1, 50)),
		ozzo.Field(&c.LastName, ozzo.Required, ozzo.RuneLength(1, 50)),
		ozzo.Field(&c.Phone, phoneRule),
	)
}

// Step validates the fields owned by one wizard step. Unknown steps pass.
func Step(step int, f wizard.FormData) error {
	switch step {
	case wizard.StepPersonalInfo:
		return ozzo.ValidateStruct(&f,
			ozzo.Field(&f.FirstName, ozzo.Required),
			ozzo.Field(&f.LastName, ozzo.Required),
			ozzo.Field(&f.Email, ozzo.Required, is.EmailFormat),
			ozzo.Field(&f.Phone, ozzo.Required, phoneRule),
		)
	case wizard.StepAcademicDetails:
		return ozzo.ValidateStruct(&f,
			ozzo.Field(&f.College, ozzo.Required),
			ozzo.Field(&f.Department, ozzo.Required),
			ozzo.Field(&f.YearOfStudy, ozzo.Required, ozzo.Min(1), ozzo.Max(5)),
		)
	case wizard.StepEventSelection:
		team := f.ParticipantType == wizard.Team
		return ozzo.ValidateStruct(&f,
			ozzo.Field(&f.EventID, ozzo.Required.Error("select an event")),
			ozzo.Field(&f.ParticipantType, ozzo.Required, ozzo.In(wizard.Individual, wizard.Team)),
			ozzo.Field(&f.TeamName, ozzo.When(team, ozzo.Required.Error("team name is required"))),
			ozzo.Field(&f.TeamMembers, ozzo.When(team, ozzo.Required.Error("add at least one team member")), ozzo.Each(ozzo.By(teamMember))),
		)
	case wizard.StepPayment:
		return ozzo.ValidateStruct(&f,
			ozzo.Field(&f.PaymentMethod, ozzo.Required, ozzo.In(wizard.PayUPI, wizard.PayCard, wizard.PayNetBanking)),
		)
	case wizard.StepConfirmation:
		return ozzo.ValidateStruct(&f,
			ozzo.Field(&f.EmergencyContact, ozzo.By(emergencyContact)),
			ozzo.Field(&f.TermsAccepted, ozzo.Required.Error("terms must be accepted")),
		)
	}
	return nil
}

// Form validates every canonical step and merges the field errors.
func Form(f wizard.FormData) error {
	merged := ozzo.Errors{}
	for step := wizard.StepPersonalInfo; step <= wizard.StepConfirmation; step++ {
		err := Step(step, f)
		if err == nil {
			continue
		}
		var fieldErrs ozzo.Errors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for k, v := range fieldErrs {
			merged[k] = v
		}
	}
	return merged.Filter()
}

func teamMember(value any) error {
	m, ok := value.(wizard.TeamMember)
	if !ok {
		return errors.New("must be a team member")
	}
	return ozzo.ValidateStruct(&m,
		ozzo.Field(&m.Name, ozzo.Required),
		ozzo.Field(&m.Email, ozzo.Required, is.EmailFormat),
		ozzo.Field(&m.Phone, phoneRule),
	)
}

func emergencyContact(value any) error {
	c, ok := value.(wizard.EmergencyContact)
	if !ok {
		return errors.New("must be an emergency contact")
	}
	return ozzo.ValidateStruct(&c,
		ozzo.Field(&c.Name, ozzo.Required),
		ozzo.Field(&c.Phone, ozzo.Required, phoneRule),
	)
}
