// cmd/vibing/account.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/vibing/vibing-client/internal/api"
	"github.com/vibing/vibing-client/internal/app"
	"github.com/vibing/vibing-client/internal/i18n"
	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/verification"
)

func runLogin(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "account email")
	pass := fs.String("password", "", "account password")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if *email == "" {
		return errUsage
	}
	pw, err := password(*pass)
	if err != nil {
		return err
	}

	user, err := a.Session.Login(ctx, *email, pw)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, a.T(i18n.KeySessionLoggedIn, user.Name))
	return nil
}

// Signup needs a phone number verified with `vibing phone` first.
func runSignup(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	fs := newFlags("signup")
	email := fs.String("email", "", "account email")
	name := fs.String("name", "", "display name")
	role := fs.String("role", string(models.UserRoleBuyer), "buyer or seller")
	pass := fs.String("password", "", "account password")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if *email == "" || *name == "" {
		return errUsage
	}

	phone, ok := a.Verification.VerifiedPhone()
	if !ok {
		return errors.New("verify your phone number first: vibing phone send <number>")
	}
	pw, err := password(*pass)
	if err != nil {
		return err
	}

	user, err := a.Session.Signup(ctx, models.SignupRequest{
		Email:         *email,
		Password:      pw,
		Name:          *name,
		Role:          models.UserRole(*role),
		Phone:         phone,
		PhoneVerified: true,
	})
	if err != nil {
		return err
	}
	a.Verification.Reset(ctx)
	fmt.Fprintln(out, a.T(i18n.KeySessionLoggedIn, user.Name))
	return nil
}

func runLogout(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	if err := a.Session.Logout(ctx); err != nil && !errors.Is(err, api.ErrSessionExpired) {
		fmt.Fprintln(out, "Warning:", api.Message(err))
	}
	fmt.Fprintln(out, a.T(i18n.KeySessionLogout))
	return nil
}

func runWhoami(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	st := a.Session.State()
	if !st.IsAuthenticated() {
		return api.ErrAuthRequired
	}
	u := st.User
	w := table(out)
	fmt.Fprintf(w, "ID\t%s\n", u.ID)
	fmt.Fprintf(w, "Name\t%s\n", u.Name)
	fmt.Fprintf(w, "Email\t%s\n", u.Email)
	fmt.Fprintf(w, "Role\t%s\n", u.Role)
	if u.Phone != "" {
		fmt.Fprintf(w, "Phone\t%s (verified: %t)\n", u.Phone, u.PhoneVerified)
	}
	if unread := a.Chat.UnreadCount(); unread > 0 {
		fmt.Fprintf(w, "Chat\t%s\n", a.T(i18n.KeyChatUnread, unread))
	}
	return w.Flush()
}

func runRefresh(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	if err := a.Session.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "Token refreshed.")
	return nil
}

func runPhone(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	flow := a.Verification

	switch args[0] {
	case "send":
		if len(args) != 2 {
			return errUsage
		}
		if err := flow.SendCode(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintln(out, a.T(i18n.KeyVerificationSent, args[1]))
		if code := flow.State().DevCode; code != "" {
			fmt.Fprintln(out, "Development code:", code)
		}
	case "resend":
		if err := flow.Resend(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Code sent again.")
	case "verify":
		if len(args) != 2 {
			return errUsage
		}
		if _, err := flow.VerifyCode(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintln(out, a.T(i18n.KeyVerificationSuccess))
	case "status":
		st := flow.State()
		fmt.Fprintln(out, "Step:", st.Step)
		if st.Data != nil {
			fmt.Fprintln(out, "Phone:", st.Data.Phone)
		}
		if st.Step == verification.StepVerified {
			fmt.Fprintln(out, a.T(i18n.KeyVerificationSuccess))
		}
	case "reset":
		flow.Reset(ctx)
	default:
		return errUsage
	}
	return nil
}
