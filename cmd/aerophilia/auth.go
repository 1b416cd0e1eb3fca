package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aerophilia/aerophilia-go/internal/model"
	"github.com/aerophilia/aerophilia-go/internal/session"
	"github.com/aerophilia/aerophilia-go/internal/validation"
)

func newLoginCmd(getApp func() *app) *cobra.Command {
	var creds model.LoginCredentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validation.Login(creds); err != nil {
				return err
			}
			user, err := getApp().session.Login(cmd.Context(), creds)
			if err != nil {
				return failure(getApp().session, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s\n", user.FullName())
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(getApp func() *app) *cobra.Command {
	var creds model.SignUpCredentials

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if creds.ConfirmPassword == "" {
				creds.ConfirmPassword = creds.Password
			}
			if err := validation.SignUp(creds); err != nil {
				return err
			}
			user, err := getApp().session.Register(cmd.Context(), creds)
			if err != nil {
				return failure(getApp().session, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", user.FullName(), user.Email)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&creds.Email, "email", "", "account email")
	f.StringVar(&creds.Password, "password", "", "account password")
	f.StringVar(&creds.ConfirmPassword, "confirm-password", "", "repeat the password (defaults to --password)")
	f.StringVar(&creds.FirstName, "first-name", "", "first name")
	f.StringVar(&creds.LastName, "last-name", "", "last name")
	f.StringVar(&creds.Phone, "phone", "", "mobile number")
	f.StringVar(&creds.College, "college", "", "college name")
	return cmd
}

func newGoogleCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "google",
		Short: "Sign in with Google",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return failure(getApp().session, getApp().session.LoginWithGoogle(cmd.Context()))
		},
	}
}

func newLogoutCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := getApp().session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(getApp func() *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := getApp().session.State()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			if !st.IsAuthenticated {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			printUser(cmd.OutOrStdout(), *st.User)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the session state as JSON")
	return cmd
}

func newProfileCmd(getApp func() *app) *cobra.Command {
	var (
		patch                                     model.UserPatch
		first, last, phone, college, dept, avatar string
		year                                      int
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Edit the stored profile of the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr := getApp().session
			if !mgr.State().IsAuthenticated {
				return session.ErrNotAuthenticated
			}

			f := cmd.Flags()
			setIfChanged := func(name string, dst **string, v string) {
				if f.Changed(name) {
					*dst = &v
				}
			}
			setIfChanged("first-name", &patch.FirstName, first)
			setIfChanged("last-name", &patch.LastName, last)
			setIfChanged("phone", &patch.Phone, phone)
			setIfChanged("college", &patch.College, college)
			setIfChanged("department", &patch.Department, dept)
			setIfChanged("avatar-url", &patch.AvatarURL, avatar)
			if f.Changed("year") {
				patch.YearOfStudy = &year
			}

			if err := mgr.UpdateUser(cmd.Context(), patch); err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), *mgr.State().User)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&first, "first-name", "", "first name")
	f.StringVar(&last, "last-name", "", "last name")
	f.StringVar(&phone, "phone", "", "mobile number")
	f.StringVar(&college, "college", "", "college name")
	f.StringVar(&dept, "department", "", "department")
	f.StringVar(&avatar, "avatar-url", "", "avatar image URL")
	f.IntVar(&year, "year", 0, "year of study")
	return cmd
}

func newRefreshCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Reload the profile from the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr := getApp().session
			if err := mgr.Refresh(cmd.Context()); err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), *mgr.State().User)
			return nil
		},
	}
}

// failure prefers the message the session shows its UI.
func failure(mgr *session.Manager, err error) error {
	if err == nil {
		return nil
	}
	if msg := mgr.State().Error; msg != "" {
		return errors.New(msg)
	}
	return err
}

func printUser(w io.Writer, u model.User) {
	fmt.Fprintf(w, "%s <%s>\n", u.FullName(), u.Email)
	if u.College != "" {
		fmt.Fprintf(w, "  college:    %s\n", u.College)
	}
	if u.Department != "" {
		fmt.Fprintf(w, "  department: %s (year %d)\n", u.Department, u.YearOfStudy)
	}
	fmt.Fprintf(w, "  events:     %d registered\n", len(u.RegisteredEvents))
	pending := 0
	for _, inv := range u.TeamInvitations {
		if inv.Status == model.InvitationPending {
			pending++
		}
	}
	if pending > 0 {
		fmt.Fprintf(w, "  invites:    %d pending\n", pending)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
