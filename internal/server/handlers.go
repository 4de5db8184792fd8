package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/valpere/promptg/internal/enhancer"
	"github.com/valpere/promptg/internal/generator"
	"github.com/valpere/promptg/internal/markdown"
	"github.com/valpere/promptg/internal/prompt"
	"github.com/valpere/promptg/internal/session"
	"github.com/valpere/promptg/internal/validator"
)

type errorResponse struct {
	Error      string                 `json:"error"`
	Message    string                 `json:"message"`
	Fields     []validator.FieldError `json:"fields,omitempty"`
	Status     int                    `json:"upstreamStatus,omitempty"`
	BasePrompt string                 `json:"basePrompt,omitempty"`
}

type optionsResponse struct {
	prompt.Catalog
	Defaults prompt.Selection `json:"defaults"`
}

type sessionResponse struct {
	Active    bool       `json:"active"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
}

type loginRequest struct {
	APIKey string `json:"apiKey"`
}

type generateResponse struct {
	*generator.Result
	EnhancedPromptHTML string `json:"enhancedPromptHtml"`
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) Options(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, optionsResponse{Catalog: a.Catalog, Defaults: prompt.NewSelection()})
}

func (a *App) SessionStatus(w http.ResponseWriter, r *http.Request) {
	res := sessionResponse{Active: a.Session.Active()}
	if res.Active {
		started := a.Session.StartedAt()
		res.StartedAt = &started
	}
	a.json(w, http.StatusOK, res)
}

func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !a.decode(w, r, &req) {
		return
	}

	err := a.Session.Start(r.Context(), req.APIKey)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, session.ErrEmptyCredential):
		a.error(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "apiKey is required"})
	case errors.Is(err, session.ErrCredentialRejected):
		a.error(w, http.StatusUnauthorized, errorResponse{Error: "invalid_credential", Message: "Invalid API key. Please check your Groq API key and try again."})
	default:
		a.Logger.Error("login failed", "error", err)
		a.error(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: "failed to start session"})
	}
}

func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.Session.Logout(r.Context()); err != nil {
		a.Logger.Error("logout failed", "error", err)
		a.error(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: "failed to end session"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) Assemble(w http.ResponseWriter, r *http.Request) {
	sel := prompt.NewSelection()
	if !a.decode(w, r, &sel) {
		return
	}

	assembly, err := a.Generator.Assemble(sel)
	if err != nil {
		a.failGeneration(w, err)
		return
	}
	a.json(w, http.StatusOK, assembly)
}

func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	credential, err := a.Session.Credential()
	if err != nil {
		a.error(w, http.StatusUnauthorized, errorResponse{Error: "no_session", Message: "log in with an API key first"})
		return
	}

	sel := prompt.NewSelection()
	if !a.decode(w, r, &sel) {
		return
	}

	res, err := a.Generator.Generate(r.Context(), credential, sel)
	if err != nil {
		a.failGeneration(w, err)
		return
	}
	a.json(w, http.StatusOK, generateResponse{Result: res, EnhancedPromptHTML: markdown.ToHTML(res.EnhancedPrompt)})
}

func (a *App) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			a.error(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	records, err := a.History.ListGenerations(r.Context(), limit)
	if err != nil {
		a.Logger.Error("list history failed", "error", err)
		a.error(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: "failed to read history"})
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": records})
}

// failGeneration maps the error taxonomy onto HTTP statuses.
func (a *App) failGeneration(w http.ResponseWriter, err error) {
	var (
		verr *validator.ValidationError
		rse  *enhancer.RemoteServiceError
		terr *enhancer.TransportError
		gerr *generator.Error
	)
	resp := errorResponse{}
	if errors.As(err, &gerr) {
		resp.BasePrompt = gerr.BasePrompt
	}

	switch {
	case errors.As(err, &verr):
		resp.Error, resp.Message, resp.Fields = "invalid_selection", verr.Error(), verr.Fields
		a.error(w, http.StatusBadRequest, resp)
	case errors.As(err, &rse):
		resp.Error, resp.Message, resp.Status = "upstream_error", "Failed to generate prompt. Please try again.", rse.StatusCode
		a.error(w, http.StatusBadGateway, resp)
	case enhancer.IsTimeout(err):
		resp.Error, resp.Message = "upstream_timeout", "The enhancement service did not answer in time."
		a.error(w, http.StatusGatewayTimeout, resp)
	case errors.As(err, &terr):
		resp.Error, resp.Message = "upstream_unreachable", "Failed to reach the enhancement service. Please check your connection and try again."
		a.error(w, http.StatusBadGateway, resp)
	default:
		a.Logger.Error("generation failed", "error", err)
		resp.Error, resp.Message = "internal", "Failed to generate prompt. Please try again."
		a.error(w, http.StatusInternalServerError, resp)
	}
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		a.error(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid payload"})
		return false
	}
	return true
}

func (a *App) json(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.Logger.Warn("failed to write response", "error", err)
	}
}

func (a *App) error(w http.ResponseWriter, status int, resp errorResponse) {
	a.json(w, status, resp)
}
