package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fsrkeeper/internal/auth"
)

func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return a.report(ctx, err)
	}
	name, err := GetSimpleText(a.reader, "Name (optional)", a.out)
	if err != nil {
		return a.report(ctx, err)
	}
	pin, err := GetPIN(a.reader, "Choose a PIN (4-12 digits)", a.out)
	if err != nil {
		return a.report(ctx, err)
	}
	again, err := GetPIN(a.reader, "Repeat the PIN", a.out)
	if err != nil {
		return a.report(ctx, err)
	}
	if pin != again {
		a.printf("PINs do not match.\n")
		return nil
	}
	remember := Confirm(a.reader, "Keep me signed in on this device?", a.out)

	u, err := a.session.CreateAccount(ctx, auth.AccountInput{Email: email, PIN: pin, Name: name}, remember)
	if err != nil {
		return a.report(ctx, err)
	}
	a.afterSessionChange()
	a.printf("Account created. Signed in as %s.\n", u.Email)
	return nil
}

// Login signs in, or unlocks the device when the session is locked.
func (a *App) Login(ctx context.Context) error {
	var email string
	if a.session.Status() == auth.StatusLocked {
		u, _ := a.session.CurrentUser()
		email = u.Email
		a.printf("Unlocking %s\n", email)
	} else {
		var err error
		email, err = GetSimpleText(a.reader, "Email", a.out)
		if err != nil {
			return a.report(ctx, err)
		}
	}

	pin, err := GetPIN(a.reader, "PIN", a.out)
	if err != nil {
		return a.report(ctx, err)
	}
	remember := Confirm(a.reader, "Keep me signed in on this device?", a.out)

	u, err := a.session.SignIn(ctx, email, pin, remember)
	if err != nil {
		return a.report(ctx, err)
	}
	a.afterSessionChange()
	a.printf("Signed in as %s.\n", u.Email)
	return nil
}

func (a *App) Lock(ctx context.Context) error {
	if err := a.session.Lock(ctx); err != nil {
		return a.report(ctx, err)
	}
	a.afterSessionChange()
	a.printf("Locked. Use 'login' to unlock.\n")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.SignOut(ctx); err != nil {
		return a.report(ctx, err)
	}
	a.afterSessionChange()
	a.printf("Signed out.\n")
	return nil
}

func (a *App) Switch(ctx context.Context) error {
	if err := a.session.SwitchUser(ctx); err != nil {
		return a.report(ctx, err)
	}
	a.afterSessionChange()
	return a.Users(ctx)
}

// Users lists the accounts on this device.
func (a *App) Users(ctx context.Context) error {
	users, err := a.session.RefreshUsers(ctx)
	if err != nil {
		return a.report(ctx, err)
	}
	if len(users) == 0 {
		a.printf("No accounts yet. Use 'register'.\n")
		return nil
	}
	for _, u := range users {
		a.printf("  %-30s %-20s last sign-in %s\n", u.Email, u.Name, u.LastLoginAt.Local().Format(time.DateTime))
	}
	return nil
}
