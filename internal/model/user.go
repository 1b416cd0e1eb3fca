package model

import "time"

// User is the festival account record returned by the API and persisted
// client-side under the user_data key.
type User struct {
	ID               string           `json:"id"`
	Email            string           `json:"email"`
	FirstName        string           `json:"firstName"`
	LastName         string           `json:"lastName"`
	Phone            string           `json:"phone,omitempty"`
	College          string           `json:"college,omitempty"`
	Department       string           `json:"department,omitempty"`
	YearOfStudy      int              `json:"yearOfStudy,omitempty"`
	AvatarURL        string           `json:"avatarUrl,omitempty"`
	RegisteredEvents []string         `json:"registeredEvents"`
	TeamInvitations  []TeamInvitation `json:"teamInvitations"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// FullName joins first and last name, skipping whichever is empty.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Clone returns a copy that shares no slices with u.
func (u User) Clone() User {
	c := u
	if u.RegisteredEvents != nil {
		c.RegisteredEvents = append([]string(nil), u.RegisteredEvents...)
	}
	if u.TeamInvitations != nil {
		c.TeamInvitations = append([]TeamInvitation(nil), u.TeamInvitations...)
	}
	return c
}

// InvitationStatus is the lifecycle state of a team invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// TeamInvitation is an invite for the user to join another participant's team.
type TeamInvitation struct {
	ID        string           `json:"id"`
	TeamID    string           `json:"teamId"`
	TeamName  string           `json:"teamName"`
	EventID   string           `json:"eventId"`
	InvitedBy string           `json:"invitedBy"`
	Status    InvitationStatus `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
}

// UserPatch is a partial user update. Nil fields are left untouched; non-nil
// slices replace the current value wholesale.
type UserPatch struct {
	FirstName        *string
	LastName         *string
	Phone            *string
	College          *string
	Department       *string
	YearOfStudy      *int
	AvatarURL        *string
	RegisteredEvents []string
	TeamInvitations  []TeamInvitation
}

// Apply returns u with the patch merged in.
func (p UserPatch) Apply(u User) User {
	out := u.Clone()
	if p.FirstName != nil {
		out.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		out.LastName = *p.LastName
	}
	if p.Phone != nil {
		out.Phone = *p.Phone
	}
	if p.College != nil {
		out.College = *p.College
	}
	if p.Department != nil {
		out.Department = *p.Department
	}
	if p.YearOfStudy != nil {
		out.YearOfStudy = *p.YearOfStudy
	}
	if p.AvatarURL != nil {
		out.AvatarURL = *p.AvatarURL
	}
	if p.RegisteredEvents != nil {
		out.RegisteredEvents = append([]string(nil), p.RegisteredEvents...)
	}
	if p.TeamInvitations != nil {
		out.TeamInvitations = append([]TeamInvitation(nil), p.TeamInvitations...)
	}
	return out
}

// LoginCredentials is the body of POST /auth/login.
type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpCredentials is the body of POST /auth/register.
type SignUpCredentials struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Phone           string `json:"phone,omitempty"`
	College         string `json:"college,omitempty"`
}

// AuthResponse is returned by both auth endpoints on success.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// ErrorResponse is the API's JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
