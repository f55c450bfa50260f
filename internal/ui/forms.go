package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/idlab-discover/carbonscope-cli/internal/api"
	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
	"github.com/idlab-discover/carbonscope-cli/internal/simulator"
)

// runForm runs f and maps an abort (esc, ctrl+c) to apperr.ErrCancelled.
func runForm(f *huh.Form) error {
	err := f.Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return apperr.ErrCancelled
	}
	return err
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// Credentials are the values of the login form.
type Credentials struct {
	Username string
	Password string
}

// LoginForm asks for a username and password. username pre-fills the first
// field.
func LoginForm(username string) (Credentials, error) {
	c := Credentials{Username: username}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&c.Username).
				Validate(required("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&c.Password).
				Validate(required("password")),
		).Title("Sign in to CarbonScope"),
	)
	if err := runForm(form); err != nil {
		return Credentials{}, err
	}
	c.Username = strings.TrimSpace(c.Username)
	return c, nil
}

// RegisterForm collects a new account. Validation here mirrors the checks
// the session repeats before calling the backend.
func RegisterForm() (api.Registration, error) {
	var r api.Registration
	var confirm string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Username").Value(&r.Username).Validate(required("username")),
			huh.NewInput().Title("Email").Value(&r.Email).Validate(func(s string) error {
				if !strings.Contains(s, "@") {
					return errors.New("enter a valid email address")
				}
				return nil
			}),
			huh.NewInput().Title("Full name").Description("Optional").Value(&r.FullName),
		).Title("Create an account"),
		huh.NewGroup(
			huh.NewInput().Title("Password").Description("At least 8 characters").
				EchoMode(huh.EchoModePassword).
				Value(&r.Password).
				Validate(func(s string) error {
					if len(s) < 8 {
						return errors.New("password must be at least 8 characters")
					}
					return nil
				}),
			huh.NewInput().Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&confirm).
				Validate(func(s string) error {
					if s != r.Password {
						return errors.New("passwords do not match")
					}
					return nil
				}),
		),
	)
	if err := runForm(form); err != nil {
		return api.Registration{}, err
	}
	return r, nil
}

// SimulatorForm lets the user pick a model and a region and edit the usage
// figures. in supplies the pre-selected values and is returned updated.
func SimulatorForm(models []catalog.Model, regions []catalog.Region, in simulator.Input) (simulator.Input, error) {
	if len(models) == 0 {
		return in, apperr.User("no models available to simulate")
	}
	modelID := ""
	if in.Model != nil {
		modelID = in.Model.ID
	}
	regionID := ""
	if in.Region != nil {
		regionID = in.Region.ID
	}
	freq := strconv.Itoa(in.Frequency)
	days := strconv.Itoa(in.DurationDays)

	modelOpts := make([]huh.Option[string], len(models))
	for i, m := range models {
		modelOpts[i] = huh.NewOption(fmt.Sprintf("%s (%s)", m.Name, formatParams(m.ParametersBillions)), m.ID)
	}
	regionOpts := make([]huh.Option[string], len(regions))
	for i, r := range regions {
		regionOpts[i] = huh.NewOption(fmt.Sprintf("%s (%s kg/kWh)", r.Name, formatFloat(r.CO2Factor, 3)), r.ID)
	}

	positive := func(what string) func(string) error {
		return func(s string) error {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil || n <= 0 {
				return fmt.Errorf("%s must be a positive whole number", what)
			}
			return nil
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Model").Options(modelOpts...).Value(&modelID).Height(10),
			huh.NewSelect[string]().Title("Region").Options(regionOpts...).Value(&regionID),
		).Title("Impact simulator"),
		huh.NewGroup(
			huh.NewInput().Title("Requests per day").Value(&freq).Validate(positive("frequency")),
			huh.NewInput().Title("Duration (days)").Value(&days).Validate(positive("duration")),
		),
	)
	if err := runForm(form); err != nil {
		return in, err
	}

	for i := range models {
		if models[i].ID == modelID {
			m := models[i]
			in.Model = &m
		}
	}
	r, err := simulator.FindRegion(regions, regionID)
	if err != nil {
		return in, err
	}
	in.Region = r
	in.Frequency, _ = strconv.Atoi(strings.TrimSpace(freq))
	in.DurationDays, _ = strconv.Atoi(strings.TrimSpace(days))
	return in, nil
}

// Confirm asks a yes/no question.
func Confirm(title, description string) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Value(&ok).
			Affirmative("Yes").
			Negative("No"),
	))
	if err := runForm(form); err != nil {
		return false, err
	}
	return ok, nil
}
