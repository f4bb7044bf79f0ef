// Package mcp implements a Model Context Protocol server for phonekit.
// It exposes phone number parsing, validation and formatting as tools that
// AI assistants can call over stdio. Every call builds its own parser from
// the configured defaults, so the process-wide default slot is never used.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/phonekit/phonekit/internal/country"
	"github.com/phonekit/phonekit/internal/phone"
)

const (
	countriesURI = "phonekit://countries"
	formatsURI   = "phonekit://formats"
)

// Config holds what the MCP server needs to answer tool calls.
type Config struct {
	Registry      *country.Registry
	Parse         phone.Options
	Formatter     *phone.Formatter
	DefaultFormat string
	Version       string
}

type handler struct {
	cfg Config
}

func newHandler(cfg Config) *handler {
	if cfg.Registry == nil {
		cfg.Registry = country.Default()
	}
	if cfg.Formatter == nil {
		cfg.Formatter, _ = phone.NewFormatter(nil)
	}
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = phone.FormatDefault
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &handler{cfg: cfg}
}

// NewServer creates a new MCP server backed by the given registry and formatter.
func NewServer(cfg Config) *mcp.Server {
	h := newHandler(cfg)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "phonekit-mcp",
		Title:   "phonekit MCP Server",
		Version: h.cfg.Version,
	}, &mcp.ServerOptions{
		Instructions: "phonekit MCP server: extract phone numbers from free text, split them into " +
			"dialing code, area code and subscriber number, validate them and render them with named " +
			"templates or %-patterns.",
	})

	registerTools(server, h)
	registerResources(server, h)
	registerPrompts(server)

	return server
}

// --- Input/Output types for tools ---

type ParsePhoneInput struct {
	Number  string `json:"number" jsonschema:"Free text containing one phone number"`
	Country string `json:"country,omitempty" jsonschema:"Dialing code to assume for national numbers (e.g. 385)"`
	Area    string `json:"area,omitempty" jsonschema:"Area code to assume for local numbers"`
	Format  string `json:"format,omitempty" jsonschema:"Template name or %-pattern for the formatted field"`
}
type ParsePhoneOutput struct {
	Phone     phone.Components `json:"phone"`
	Formatted string           `json:"formatted"`
}

type ValidatePhoneInput struct {
	Numbers []string `json:"numbers" jsonschema:"Phone numbers to check"`
	Country string   `json:"country,omitempty" jsonschema:"Dialing code to assume for national numbers"`
	Area    string   `json:"area,omitempty" jsonschema:"Area code to assume for local numbers"`
}
type ValidationResult struct {
	Input   string `json:"input"`
	Valid   bool   `json:"valid"`
	E164    string `json:"e164,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}
type ValidatePhoneOutput struct {
	Results []ValidationResult `json:"results"`
	Valid   int                `json:"valid"`
	Invalid int                `json:"invalid"`
}

type FormatPhoneInput struct {
	Number  string `json:"number" jsonschema:"Phone number to format"`
	Format  string `json:"format" jsonschema:"Template name (default, europe, us, ...) or %-pattern such as %A/%f-%l"`
	Country string `json:"country,omitempty" jsonschema:"Dialing code to assume for national numbers"`
	Area    string `json:"area,omitempty" jsonschema:"Area code to assume for local numbers"`
}
type FormatPhoneOutput struct {
	Formatted string `json:"formatted"`
}

type LookupCountryInput struct {
	Query string `json:"query" jsonschema:"Dialing code (385, +1876) or ISO code (HRV, HR)"`
}
type LookupCountryOutput struct {
	Country *country.Country `json:"country"`
	Regions []string         `json:"regions,omitempty"`
}

type ListFormatsInput struct{}
type ListFormatsOutput struct {
	Default   string           `json:"default"`
	Templates []phone.Template `json:"templates"`
}

// --- Tool registration ---

func registerTools(s *mcp.Server, h *handler) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "parse_phone",
		Description: "Extract a phone number from free text and split it into country, area code, subscriber number and extension",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in ParsePhoneInput) (*mcp.CallToolResult, ParsePhoneOutput, error) {
		return h.parsePhone(ctx, in)
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "validate_phone",
		Description: "Check whether each input contains a parseable phone number and report why it fails otherwise",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in ValidatePhoneInput) (*mcp.CallToolResult, ValidatePhoneOutput, error) {
		return h.validatePhone(ctx, in)
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "format_phone",
		Description: "Parse a phone number and render it with a named template or a %-pattern",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in FormatPhoneInput) (*mcp.CallToolResult, FormatPhoneOutput, error) {
		return h.formatPhone(ctx, in)
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "lookup_country",
		Description: "Look up a country by dialing code or ISO code",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in LookupCountryInput) (*mcp.CallToolResult, LookupCountryOutput, error) {
		return h.lookupCountry(ctx, in)
	})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_formats",
		Description: "List the named format templates and their patterns",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in ListFormatsInput) (*mcp.CallToolResult, ListFormatsOutput, error) {
		return h.listFormats(ctx)
	})
}

// --- Tool handlers ---

func (h *handler) parser(countryCode, areaCode string) *phone.Parser {
	opts := h.cfg.Parse
	opts.Registry = h.cfg.Registry
	if countryCode != "" {
		opts.DefaultCountryCode = countryCode
	}
	if areaCode != "" {
		opts.DefaultAreaCode = areaCode
	}
	return phone.NewParser(opts)
}

func (h *handler) parsePhone(_ context.Context, in ParsePhoneInput) (*mcp.CallToolResult, ParsePhoneOutput, error) {
	ph, err := h.parser(in.Country, in.Area).Parse(in.Number)
	if err != nil {
		return nil, ParsePhoneOutput{}, err
	}
	format := in.Format
	if format == "" {
		format = h.cfg.DefaultFormat
	}
	return nil, ParsePhoneOutput{
		Phone:     ph.Components(),
		Formatted: h.cfg.Formatter.Format(ph, format),
	}, nil
}

func (h *handler) validatePhone(_ context.Context, in ValidatePhoneInput) (*mcp.CallToolResult, ValidatePhoneOutput, error) {
	if len(in.Numbers) == 0 {
		return nil, ValidatePhoneOutput{}, fmt.Errorf("numbers is required")
	}
	p := h.parser(in.Country, in.Area)
	out := ValidatePhoneOutput{Results: make([]ValidationResult, 0, len(in.Numbers))}
	for _, raw := range in.Numbers {
		res := ValidationResult{Input: raw}
		ph, err := p.Parse(raw)
		if err != nil {
			res.Kind = phone.KindOf(err).String()
			res.Message = err.Error()
			out.Invalid++
		} else {
			res.Valid = true
			res.E164 = ph.E164()
			out.Valid++
		}
		out.Results = append(out.Results, res)
	}
	return nil, out, nil
}

func (h *handler) formatPhone(_ context.Context, in FormatPhoneInput) (*mcp.CallToolResult, FormatPhoneOutput, error) {
	if strings.TrimSpace(in.Format) == "" {
		return nil, FormatPhoneOutput{}, fmt.Errorf("format is required")
	}
	ph, err := h.parser(in.Country, in.Area).Parse(in.Number)
	if err != nil {
		return nil, FormatPhoneOutput{}, err
	}
	return nil, FormatPhoneOutput{Formatted: h.cfg.Formatter.Format(ph, in.Format)}, nil
}

func (h *handler) lookupCountry(_ context.Context, in LookupCountryInput) (*mcp.CallToolResult, LookupCountryOutput, error) {
	c, ok := h.cfg.Registry.Lookup(in.Query)
	if !ok {
		return nil, LookupCountryOutput{}, fmt.Errorf("no country matches %q", in.Query)
	}
	return nil, LookupCountryOutput{Country: c, Regions: country.Regions(c)}, nil
}

func (h *handler) listFormats(_ context.Context) (*mcp.CallToolResult, ListFormatsOutput, error) {
	return nil, ListFormatsOutput{
		Default:   h.cfg.DefaultFormat,
		Templates: h.cfg.Formatter.Templates(),
	}, nil
}

// --- Resource registration ---

func registerResources(s *mcp.Server, h *handler) {
	s.AddResource(&mcp.Resource{
		URI:         countriesURI,
		Name:        "Countries",
		Description: "Every country in the registry with its dialing code, ISO codes and area-code pattern",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return jsonResource(countriesURI, h.cfg.Registry.All())
	})

	s.AddResource(&mcp.Resource{
		URI:         formatsURI,
		Name:        "Format Templates",
		Description: "Named format templates and the default format",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_, out, _ := h.listFormats(ctx)
		return jsonResource(formatsURI, out)
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			Text:     string(b),
			MIMEType: "application/json",
		}},
	}, nil
}

// --- Prompt registration ---

func registerPrompts(s *mcp.Server) {
	s.AddPrompt(&mcp.Prompt{
		Name:        "normalize-numbers",
		Description: "Normalize every phone number found in a block of text",
		Arguments: []*mcp.PromptArgument{
			{Name: "text", Description: "Text containing phone numbers", Required: true},
			{Name: "country", Description: "Dialing code to assume for national numbers"},
			{Name: "format", Description: "Template name or pattern for the output (default: default)"},
		},
	}, func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return normalizePrompt(req.Params.Arguments), nil
	})
}

func normalizePrompt(args map[string]string) *mcp.GetPromptResult {
	format := args["format"]
	if format == "" {
		format = phone.FormatDefault
	}
	var b strings.Builder
	b.WriteString("Find every phone number in the text below. Split the text into one candidate per number, ")
	b.WriteString("then call validate_phone with all candidates")
	if code := args["country"]; code != "" {
		fmt.Fprintf(&b, " and country %q", code)
	}
	b.WriteString(". For each valid number call format_phone with format ")
	fmt.Fprintf(&b, "%q. ", format)
	b.WriteString("Return a table of original text, formatted number and country. ")
	b.WriteString("List invalid candidates separately with the failure kind.\n\n")
	b.WriteString(args["text"])

	return &mcp.GetPromptResult{
		Description: "Normalize phone numbers to " + format,
		Messages: []*mcp.PromptMessage{{
			Role:    "user",
			Content: &mcp.TextContent{Text: b.String()},
		}},
	}
}
