package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aerophilia/aerophilia-go/internal/model"
	"github.com/aerophilia/aerophilia-go/internal/validation"
	"github.com/aerophilia/aerophilia-go/internal/wizard"
)

var (
	errUnknownEvent = errors.New("unknown event")
	errEventFull    = errors.New("event is full")
	errTeamSize     = errors.New("team size out of range")
)

// StepError reports the wizard step whose fields failed validation.
type StepError struct {
	Step  int
	Title string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Title, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// runWizard feeds each step its patch, validates it and moves on. It stops
// on the first step that does not validate, leaving the wizard there.
func runWizard(p *wizard.Progress, patches map[int]wizard.FormPatch) (wizard.FormData, error) {
	for {
		step := p.CurrentStep()
		p.UpdateFormData(patches[step])

		snap := p.Snapshot()
		if err := validation.Step(step, snap.FormData); err != nil {
			return snap.FormData, &StepError{Step: step, Title: snap.ActiveStep().Title, Err: err}
		}

		if step == p.TotalSteps() {
			p.MarkStepCompleted(step)
			break
		}
		p.NextStep()
	}

	form := p.Snapshot().FormData
	return form, validation.Form(form)
}

// checkEvent verifies the chosen event against the catalog.
func checkEvent(events []model.Event, form wizard.FormData) (model.Event, error) {
	for _, e := range events {
		if e.ID != form.EventID {
			continue
		}
		if e.IsFull() {
			return e, fmt.Errorf("%w: %s", errEventFull, e.Name)
		}
		if form.ParticipantType == wizard.Team && e.TeamSize != nil {
			// The registrant counts as a member.
			size := len(form.TeamMembers) + 1
			if size < e.TeamSize.Min || size > e.TeamSize.Max {
				return e, fmt.Errorf("%w: %s takes %d-%d members, got %d",
					errTeamSize, e.Name, e.TeamSize.Min, e.TeamSize.Max, size)
			}
		}
		return e, nil
	}
	return model.Event{}, fmt.Errorf("%w: %q", errUnknownEvent, form.EventID)
}

// parseMember reads "name,email[,phone]".
func parseMember(s string) (wizard.TeamMember, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return wizard.TeamMember{}, fmt.Errorf("invalid member %q: want name,email[,phone]", s)
	}
	m := wizard.TeamMember{Name: strings.TrimSpace(parts[0]), Email: strings.TrimSpace(parts[1])}
	if len(parts) == 3 {
		m.Phone = strings.TrimSpace(parts[2])
	}
	return m, nil
}

type enrollFlags struct {
	firstName, lastName, email, phone string
	college, department               string
	year                              int
	eventID, participant, teamName    string
	members                           []string
	payment                           string
	emergencyName, emergencyPhone     string
	emergencyRelation                 string
	acceptTerms                       bool
}

// patches prefills personal and academic details from the signed-in user;
// explicit flags win.
func (ef enrollFlags) patches(user *model.User) (map[int]wizard.FormPatch, error) {
	pick := func(flag, fromUser string) *string {
		if flag != "" {
			return wizard.Ptr(flag)
		}
		if fromUser != "" {
			return wizard.Ptr(fromUser)
		}
		return nil
	}
	var u model.User
	if user != nil {
		u = *user
	}

	personal := wizard.FormPatch{
		FirstName: pick(ef.firstName, u.FirstName),
		LastName:  pick(ef.lastName, u.LastName),
		Email:     pick(ef.email, u.Email),
		Phone:     pick(ef.phone, u.Phone),
	}

	academic := wizard.FormPatch{
		College:    pick(ef.college, u.College),
		Department: pick(ef.department, u.Department),
	}
	switch {
	case ef.year != 0:
		academic.YearOfStudy = wizard.Ptr(ef.year)
	case u.YearOfStudy != 0:
		academic.YearOfStudy = wizard.Ptr(u.YearOfStudy)
	}

	participant := wizard.ParticipantType(ef.participant)
	if participant == "" {
		participant = wizard.Individual
		if len(ef.members) > 0 || ef.teamName != "" {
			participant = wizard.Team
		}
	}
	selection := wizard.FormPatch{
		EventID:         wizard.Ptr(ef.eventID),
		ParticipantType: &participant,
	}
	if participant == wizard.Team {
		selection.TeamName = wizard.Ptr(ef.teamName)
		members := make([]wizard.TeamMember, 0, len(ef.members))
		for _, raw := range ef.members {
			m, err := parseMember(raw)
			if err != nil {
				return nil, err
			}
			members = append(members, m)
		}
		selection.TeamMembers = members
	}

	return map[int]wizard.FormPatch{
		wizard.StepPersonalInfo:    personal,
		wizard.StepAcademicDetails: academic,
		wizard.StepEventSelection:  selection,
		wizard.StepPayment: {
			PaymentMethod: wizard.Ptr(wizard.PaymentMethod(ef.payment)),
		},
		wizard.StepConfirmation: {
			EmergencyContact: &wizard.EmergencyContact{
				Name:     ef.emergencyName,
				Phone:    ef.emergencyPhone,
				Relation: ef.emergencyRelation,
			},
			TermsAccepted: wizard.Ptr(ef.acceptTerms),
		},
	}, nil
}

func newEnrollCmd(getApp func() *app) *cobra.Command {
	var ef enrollFlags

	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Walk the event registration wizard and print the completed form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			st := a.session.State()

			patches, err := ef.patches(st.User)
			if err != nil {
				return err
			}

			p := wizard.New()
			form, err := runWizard(p, patches)
			if err != nil {
				return err
			}

			events, err := a.api.ListEvents(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch events: %w", err)
			}
			event, err := checkEvent(events, form)
			if err != nil {
				return err
			}

			a.log.Info("registration form completed")
			fmt.Fprintf(cmd.OutOrStdout(), "Ready to register for %s (fee %s)\n", event.Name, event.RegistrationFee.StringFixed(2))
			return writeJSON(cmd.OutOrStdout(), p.Snapshot())
		},
	}

	f := cmd.Flags()
	f.StringVar(&ef.firstName, "first-name", "", "first name (defaults to the signed-in user)")
	f.StringVar(&ef.lastName, "last-name", "", "last name")
	f.StringVar(&ef.email, "email", "", "contact email")
	f.StringVar(&ef.phone, "phone", "", "mobile number")
	f.StringVar(&ef.college, "college", "", "college name")
	f.StringVar(&ef.department, "department", "", "department")
	f.IntVar(&ef.year, "year", 0, "year of study")
	f.StringVar(&ef.eventID, "event", "", "event ID")
	f.StringVar(&ef.participant, "as", "", "individual or team")
	f.StringVar(&ef.teamName, "team-name", "", "team name")
	f.StringArrayVar(&ef.members, "member", nil, "team member as name,email[,phone]; repeatable")
	f.StringVar(&ef.payment, "payment", "", "upi, card or netbanking")
	f.StringVar(&ef.emergencyName, "emergency-name", "", "emergency contact name")
	f.StringVar(&ef.emergencyPhone, "emergency-phone", "", "emergency contact phone")
	f.StringVar(&ef.emergencyRelation, "emergency-relation", "", "emergency contact relation")
	f.BoolVar(&ef.acceptTerms, "accept-terms", false, "accept the event terms")
	cmd.MarkFlagRequired("event")
	return cmd
}
