package wizard

// ParticipantType says whether the registrant enters alone or with a team.
type ParticipantType string

const (
	Individual ParticipantType = "individual"
	Team       ParticipantType = "team"
)

// PaymentMethod is the chosen way to pay the registration fee.
type PaymentMethod string

const (
	PayUPI        PaymentMethod = "upi"
	PayCard       PaymentMethod = "card"
	PayNetBanking PaymentMethod = "netbanking"
)

// TeamMember is a teammate listed on a team registration.
type TeamMember struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// EmergencyContact is collected on the confirmation step.
type EmergencyContact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Relation string `json:"relation,omitempty"`
}

// FormData accumulates everything the registrant enters across steps.
// The wizard never validates it.
type FormData struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`

	College     string `json:"college,omitempty"`
	Department  string `json:"department,omitempty"`
	YearOfStudy int    `json:"yearOfStudy,omitempty"`

	EventID         string          `json:"eventId,omitempty"`
	ParticipantType ParticipantType `json:"participantType,omitempty"`
	TeamName        string          `json:"teamName,omitempty"`
	TeamMembers     []TeamMember    `json:"teamMembers,omitempty"`

	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`

	EmergencyContact EmergencyContact `json:"emergencyContact"`
	TermsAccepted    bool             `json:"termsAccepted"`
}

func (f FormData) clone() FormData {
	if f.TeamMembers != nil {
		f.TeamMembers = append([]TeamMember(nil), f.TeamMembers...)
	}
	return f
}

// FormPatch is a shallow update: nil fields keep their value, a non-nil
// TeamMembers replaces the whole list.
type FormPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string

	College     *string
	Department  *string
	YearOfStudy *int

	EventID         *string
	ParticipantType *ParticipantType
	TeamName        *string
	TeamMembers     []TeamMember

	PaymentMethod *PaymentMethod

	EmergencyContact *EmergencyContact
	TermsAccepted    *bool
}

func (p FormPatch) apply(f FormData) FormData {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&f.FirstName, p.FirstName)
	set(&f.LastName, p.LastName)
	set(&f.Email, p.Email)
	set(&f.Phone, p.Phone)
	set(&f.College, p.College)
	set(&f.Department, p.Department)
	set(&f.EventID, p.EventID)
	set(&f.TeamName, p.TeamName)

	if p.YearOfStudy != nil {
		f.YearOfStudy = *p.YearOfStudy
	}
	if p.ParticipantType != nil {
		f.ParticipantType = *p.ParticipantType
	}
	if p.TeamMembers != nil {
		f.TeamMembers = append([]TeamMember(nil), p.TeamMembers...)
	}
	if p.PaymentMethod != nil {
		f.PaymentMethod = *p.PaymentMethod
	}
	if p.EmergencyContact != nil {
		f.EmergencyContact = *p.EmergencyContact
	}
	if p.TermsAccepted != nil {
		f.TermsAccepted = *p.TermsAccepted
	}
	return f
}

// Ptr is a small helper for building patches.
func Ptr[T any](v T) *T { return &v }
