package core

import (
	"errors"
	"strings"
)

type (
	// PlatformOption is one ride-hailing platform the driver can log
	// services against. Selected controls whether it shows up in entry forms.
	PlatformOption struct {
		ID       string
		Name     string
		Color    string
		Selected bool
	}

	// ExpenseCategory is one entry in the open, user-extensible category set.
	ExpenseCategory struct {
		ID    string
		Name  string
		Color string
	}

	// Profile is the driver's configuration: vehicle type, the platform
	// set and the expense category set.
	Profile struct {
		DriverType   DriverType
		CurrencyCode string
		Platforms    []PlatformOption
		Categories   []ExpenseCategory
	}
)

// DefaultPlatforms is the seed platform set offered during onboarding.
func DefaultPlatforms() []PlatformOption {
	return []PlatformOption{
		{ID: "uber", Name: "Uber", Color: "#000000", Selected: true},
		{ID: "didi", Name: "DiDi", Color: "#fc4c01", Selected: true},
		{ID: "indrive", Name: "InDrive", Color: "#c1f11d", Selected: true},
		{ID: "mano", Name: "Mano", Color: "#1e88e5", Selected: false},
		{ID: "coopebombas", Name: "Coopebombas", Color: "#0d768c", Selected: false},
	}
}

// DefaultCategories is the seed expense category set.
func DefaultCategories() []ExpenseCategory {
	return []ExpenseCategory{
		{ID: "fuel", Name: "Tanqueo", Color: "#f97316"},
		{ID: "food", Name: "Alimentación", Color: "#84cc16"},
		{ID: "wash", Name: "Lavado", Color: "#0ea5e9"},
		{ID: "maintenance", Name: "Mantenimiento", Color: "#8b5cf6"},
		{ID: "other", Name: "Otro", Color: "#64748b"},
	}
}

func DefaultProfile() Profile {
	return Profile{
		DriverType:   DriverPlatform,
		CurrencyCode: "COP",
		Platforms:    DefaultPlatforms(),
		Categories:   DefaultCategories(),
	}
}

func (p Profile) Validate() error {
	if !p.DriverType.IsValid() {
		return errors.New("invalid driver type")
	}
	if len(p.Platforms) == 0 {
		return errors.New("at least one platform required")
	}
	for _, pl := range p.Platforms {
		if strings.TrimSpace(pl.ID) == "" {
			return ErrEmptyPlatform
		}
	}
	for _, c := range p.Categories {
		if strings.TrimSpace(c.ID) == "" {
			return ErrEmptyCategory
		}
	}
	return nil
}

// SelectedPlatforms returns the platforms enabled for entry forms.
func (p Profile) SelectedPlatforms() []PlatformOption {
	out := make([]PlatformOption, 0, len(p.Platforms))
	for _, pl := range p.Platforms {
		if pl.Selected {
			out = append(out, pl)
		}
	}
	return out
}
