package http

import (
	"net/http"

	"rutapro/internal/core"
)

type platformOptionJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Selected bool   `json:"selected"`
}

type expenseCategoryJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type profileJSON struct {
	DriverType   string                `json:"driver_type"`
	CurrencyCode string                `json:"currency_code"`
	Platforms    []platformOptionJSON  `json:"platforms"`
	Categories   []expenseCategoryJSON `json:"categories"`
}

func profileToJSON(p core.Profile) profileJSON {
	out := profileJSON{
		DriverType:   string(p.DriverType),
		CurrencyCode: p.CurrencyCode,
		Platforms:    make([]platformOptionJSON, 0, len(p.Platforms)),
		Categories:   make([]expenseCategoryJSON, 0, len(p.Categories)),
	}
	for _, pl := range p.Platforms {
		out.Platforms = append(out.Platforms, platformOptionJSON(pl))
	}
	for _, c := range p.Categories {
		out.Categories = append(out.Categories, expenseCategoryJSON(c))
	}
	return out
}

func profileFromJSON(in profileJSON) core.Profile {
	p := core.Profile{
		DriverType:   core.DriverType(sanitizeInput(in.DriverType)),
		CurrencyCode: sanitizeInput(in.CurrencyCode),
		Platforms:    make([]core.PlatformOption, 0, len(in.Platforms)),
		Categories:   make([]core.ExpenseCategory, 0, len(in.Categories)),
	}
	for _, pl := range in.Platforms {
		pl.ID = sanitizeInput(pl.ID)
		pl.Name = sanitizeInput(pl.Name)
		p.Platforms = append(p.Platforms, core.PlatformOption(pl))
	}
	for _, c := range in.Categories {
		c.ID = sanitizeInput(c.ID)
		c.Name = sanitizeInput(c.Name)
		p.Categories = append(p.Categories, core.ExpenseCategory(c))
	}
	return p
}

// handleConfig serves (GET) and replaces (PUT) the driver profile.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		p, err := s.store.Profile(r.Context())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, profileToJSON(p))
	case http.MethodPut:
		var in profileJSON
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		p := profileFromJSON(in)
		if err := p.Validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := s.store.SaveProfile(r.Context(), p); err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, profileToJSON(p))
	default:
		methodNotAllowed(w, "GET, PUT")
	}
}
