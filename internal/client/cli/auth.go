package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/client/models"
	"github.com/qwesilowell/Smart-Attendance-Tracker/internal/common"
)

// Login prompts for credentials and adopts the resulting session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}
	defer common.WipeBytes(password)

	current, err := a.session.Login(ctx, email, string(password))
	if err != nil {
		fmt.Fprintf(a.out, "Login failed: %v\n", err)
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", current.Identity.DisplayName(), current.Identity.Role)
	if current.Identity.Role == models.RoleSuperAdmin {
		fmt.Fprintln(a.out, "Use 'selectorg <id>' to administer an organisation.")
	}
	return nil
}

// SelectOrganisation swaps the token for one scoped to the given
// organisation. Super-admin only.
func (a *App) SelectOrganisation(ctx context.Context, args []string) error {
	current := a.session.Current()
	if current == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return common.ErrNotAuthenticated
	}
	if current.Identity.Role != models.RoleSuperAdmin {
		fmt.Fprintln(a.out, "Only a super-admin can switch organisations.")
		return common.ErrUnauthorized
	}
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: selectorg <organisation-id>")
		return fmt.Errorf("missing organisation id")
	}
	orgID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(a.out, "Invalid organisation id: %s\n", args[0])
		return err
	}

	switched, err := a.session.SelectOrganisation(ctx, orgID)
	if err != nil {
		fmt.Fprintf(a.out, "%v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Switched to organisation %s\n", switched.Identity.OrganisationName)
	return nil
}

// Whoami prints the adopted identity and token expiry.
func (a *App) Whoami(ctx context.Context) error {
	current := a.session.Current()
	if current == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s>\n", current.Identity.DisplayName(), current.Identity.Email)
	fmt.Fprintf(a.out, "Role: %s\n", current.Identity.Role)
	if current.Identity.OrganisationName != "" {
		fmt.Fprintf(a.out, "Organisation: %s (#%d)\n", current.Identity.OrganisationName, current.Identity.OrganisationID)
	}
	fmt.Fprintf(a.out, "Session expires: %s\n", current.ExpiresAt.Local().Format("15:04:05"))
	return nil
}

// Logout clears the session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
