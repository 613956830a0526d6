package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/worklogger/internal/client/client"
	"github.com/dmitrijs2005/worklogger/internal/client/models"
	"github.com/dmitrijs2005/worklogger/internal/client/services"
)

// getSimpleText, getPassword and getYesNo are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getYesNo = GetYesNo

// Register prompts for the account details and creates the account. It does
// not sign in.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	ctx, cancel := a.timeout(ctx)
	defer cancel()

	if err := a.authService.Register(ctx, userName, fullName, email, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success! You can login now.")
	return nil
}

// Login prompts for credentials, signs in and resolves the profile. The
// syncer picks the new identity up on its own.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Already logged in, logout first")
		return nil
	}

	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	lctx, cancel := a.timeout(ctx)
	id, err := a.authService.Login(lctx, userName, password)
	cancel()
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		a.logger.Warn(ctx, "login unsuccessful", "error", err)
		return err
	}

	a.setMode(ModeOnline)
	return a.signIn(ctx, id, true)
}

// restore signs the stored session back in, if there is one.
func (a *App) restore(ctx context.Context) {
	rctx, cancel := a.timeout(ctx)
	id, err := a.authService.Restore(rctx)
	cancel()

	switch {
	case errors.Is(err, services.ErrNoSession):
		return
	case err != nil:
		a.logger.Warn(ctx, "session restore failed", "error", err)
		fmt.Fprintln(a.out, "Previous session could not be restored, please login")
		return
	}

	if err := a.signIn(ctx, id, false); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
	}
}

// signIn publishes id and loads its profile. With prompt set, a missing
// profile starts onboarding right away.
func (a *App) signIn(ctx context.Context, id *models.Identity, prompt bool) error {
	a.ids.SetIdentity(ctx, id)

	pctx, cancel := a.timeout(ctx)
	err := a.ids.LoadProfile(pctx)
	cancel()
	if err != nil {
		a.logger.Warn(ctx, "profile not loaded", "error", err)
	}

	fmt.Fprintf(a.out, "Hello, %s\n", a.ids.WelcomeName(ctx))

	if a.ids.IsReady() && a.ids.Profile() == nil {
		if !prompt {
			fmt.Fprintln(a.out, "Your profile is not set up yet, run 'onboard'")
			return nil
		}
		return a.Onboard(ctx)
	}
	return nil
}

// Onboard asks for the study year and saves the member profile.
func (a *App) Onboard(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Enter your study year (1-5)", a.out)
	if err != nil {
		return err
	}

	year, err := strconv.Atoi(answer)
	if err != nil {
		year = 0
	}

	ctx, cancel := a.timeout(ctx)
	defer cancel()

	p, err := a.ids.SaveProfile(ctx, year)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Profile saved: %s, Year %d\n", p.DisplayName, p.StudyYear)
	return nil
}

// Logout ends the session. Signing the identity out makes the syncer drop
// its subscription and clears both views.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.ids.SetIdentity(ctx, nil)
	a.form = services.Form{Date: a.form.Date}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
