package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/phonekit/phonekit/internal/country"
	"github.com/phonekit/phonekit/internal/httputil"
)

type countryListResponse struct {
	Items      []*country.Country `json:"items"`
	TotalItems int                `json:"totalItems"`
}

// handleListCountries lists the registry, optionally filtered by a
// case-insensitive substring of the name (?q=).
func (s *Server) handleListCountries(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	items := make([]*country.Country, 0, s.registry.Len())
	for _, c := range s.registry.All() {
		if q != "" && !strings.Contains(strings.ToLower(c.Name), q) {
			continue
		}
		items = append(items, c)
	}
	httputil.WriteJSON(w, http.StatusOK, countryListResponse{Items: items, TotalItems: len(items)})
}

func (s *Server) handleGetCountry(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	c, ok := s.registry.Lookup(code)
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "no country for code "+code)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) handleListFormats(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"default":   s.cfg.Format.Default,
		"templates": s.formatter.Templates(),
	})
}
