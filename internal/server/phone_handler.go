package server

import (
	"fmt"
	"net/http"

	"github.com/phonekit/phonekit/internal/httputil"
	"github.com/phonekit/phonekit/internal/phone"
)

type parseRequest struct {
	Number  string `json:"number" validate:"required"`
	Country string `json:"country,omitempty" validate:"omitempty,dialcode"`
	Area    string `json:"area,omitempty" validate:"omitempty,digits"`
	Format  string `json:"format,omitempty"`
}

type formatRequest struct {
	Number  string `json:"number" validate:"required"`
	Format  string `json:"format" validate:"required"`
	Country string `json:"country,omitempty" validate:"omitempty,dialcode"`
	Area    string `json:"area,omitempty" validate:"omitempty,digits"`
}

type batchRequest struct {
	Numbers []string `json:"numbers" validate:"required,min=1"`
	Country string   `json:"country,omitempty" validate:"omitempty,dialcode"`
	Area    string   `json:"area,omitempty" validate:"omitempty,digits"`
	Format  string   `json:"format,omitempty"`
}

type phoneResponse struct {
	phone.Components
	Formatted string `json:"formatted"`
}

type validateResponse struct {
	Valid   bool   `json:"valid"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

type batchResult struct {
	Index   int            `json:"index"`
	Input   string         `json:"input"`
	Valid   bool           `json:"valid"`
	Phone   *phoneResponse `json:"phone,omitempty"`
	Kind    string         `json:"kind,omitempty"`
	Message string         `json:"message,omitempty"`
}

type batchResponse struct {
	Results []batchResult `json:"results"`
	Valid   int           `json:"valid"`
	Invalid int           `json:"invalid"`
}

// parser builds a per-request parser. Request values override the
// configured defaults; the process-wide defaults are never consulted.
func (s *Server) parser(countryCode, areaCode string) *phone.Parser {
	opts := s.cfg.ParserOptions()
	opts.Registry = s.registry
	if countryCode != "" {
		opts.DefaultCountryCode = countryCode
	}
	if areaCode != "" {
		opts.DefaultAreaCode = areaCode
	}
	return phone.NewParser(opts)
}

func (s *Server) formatName(requested string) string {
	if requested != "" {
		return requested
	}
	return s.cfg.Format.Default
}

func (s *Server) render(p *phone.Phone, format string) *phoneResponse {
	return &phoneResponse{
		Components: p.Components(),
		Formatted:  s.formatter.Format(p, s.formatName(format)),
	}
}

func writeParseError(w http.ResponseWriter, err error) {
	httputil.WriteErrorData(w, http.StatusUnprocessableEntity, err.Error(), map[string]any{
		"kind": phone.KindOf(err).String(),
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !s.validate.DecodeAndValidate(w, r, &req) {
		return
	}
	p, err := s.parser(req.Country, req.Area).Parse(req.Number)
	if err != nil {
		writeParseError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.render(p, req.Format))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !s.validate.DecodeAndValidate(w, r, &req) {
		return
	}
	_, err := s.parser(req.Country, req.Area).Parse(req.Number)
	if err != nil {
		httputil.WriteJSON(w, http.StatusOK, validateResponse{
			Kind:    phone.KindOf(err).String(),
			Message: err.Error(),
		})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, validateResponse{Valid: true})
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req formatRequest
	if !s.validate.DecodeAndValidate(w, r, &req) {
		return
	}
	p, err := s.parser(req.Country, req.Area).Parse(req.Number)
	if err != nil {
		writeParseError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"formatted": s.formatter.Format(p, req.Format),
		"e164":      p.E164(),
	})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !s.validate.DecodeAndValidate(w, r, &req) {
		return
	}
	if limit := s.cfg.Server.MaxBatch; len(req.Numbers) > limit {
		httputil.WriteFieldError(w, http.StatusBadRequest, "validation failed",
			"numbers", "max", fmt.Sprintf("numbers must have at most %d entries", limit))
		return
	}

	parser := s.parser(req.Country, req.Area)
	resp := batchResponse{Results: make([]batchResult, 0, len(req.Numbers))}
	for i, raw := range req.Numbers {
		res := batchResult{Index: i, Input: raw}
		p, err := parser.Parse(raw)
		if err != nil {
			res.Kind = phone.KindOf(err).String()
			res.Message = err.Error()
			resp.Invalid++
		} else {
			res.Valid = true
			res.Phone = s.render(p, req.Format)
			resp.Valid++
		}
		resp.Results = append(resp.Results, res)
	}
	s.logger.Debug("batch parsed", "total", len(req.Numbers), "valid", resp.Valid, "invalid", resp.Invalid)
	httputil.WriteJSON(w, http.StatusOK, resp)
}
