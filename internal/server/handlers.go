package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alanhoff/apostrophe-people/internal/model"
	"github.com/alanhoff/apostrophe-people/internal/people"
	"github.com/alanhoff/apostrophe-people/internal/permission"
	"github.com/alanhoff/apostrophe-people/internal/storage"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Handlers holds the dependencies the HTTP handlers need.
type Handlers struct {
	people       *people.Service
	pinger       Pinger
	logger       *slog.Logger
	version      string
	maxBodyBytes int64
}

// HandleListPeople serves GET /v1/people.
//
// Query parameters: letter (lastName initial), login (true/false), group
// (group id), limit, offset. Each returned record carries its groups and its
// permalink URL.
func (h *Handlers) HandleListPeople(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := model.GetOptions{
		Letter: q.Get("letter"),
		Limit:  defaultListLimit,
	}
	if v := q.Get("login"); v != "" {
		login, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "login must be true or false")
			return
		}
		opts.Login = &login
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > maxListLimit {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "limit must be between 1 and 200")
			return
		}
		opts.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "offset must be non-negative")
			return
		}
		opts.Offset = offset
	}

	criteria := model.Criteria{GroupID: q.Get("group")}

	rs, err := h.people.Get(r.Context(), criteria, opts)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	for i := range rs.People {
		h.attachPermalink(r, &rs.People[i])
	}

	writeJSON(w, r, http.StatusOK, model.ListPeopleResponse{
		People:  rs.People,
		Total:   rs.Total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+len(rs.People) < rs.Total,
	})
}

// HandleGetPerson serves GET /v1/people/{slug}.
func (h *Handlers) HandleGetPerson(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	p, err := h.people.GetOne(r.Context(), model.Criteria{Slug: slug}, model.GetOptions{})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "person not found")
			return
		}
		h.serviceError(w, r, err)
		return
	}

	h.attachPermalink(r, &p)
	writeJSON(w, r, http.StatusOK, p)
}

// HandleAutocomplete serves GET /v1/people/autocomplete.
func (h *Handlers) HandleAutocomplete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	term := q.Get("term")
	if term == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "term is required")
		return
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxListLimit {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	entries, err := h.people.Autocomplete(r.Context(), term, limit)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, model.AutocompleteResponse{Entries: entries})
}

// HandleSavePerson serves POST /v1/people.
func (h *Handlers) HandleSavePerson(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req model.SavePersonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body")
		return
	}
	if req.Login && req.Username == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "login-enabled person requires a username")
		return
	}

	p := model.Person{
		ID:        req.ID,
		Title:     req.Title,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Login:     req.Login,
		Username:  req.Username,
		Email:     req.Email,
		Phone:     req.Phone,
		GroupIDs:  req.GroupIDs,
	}

	saved, err := h.people.Save(r.Context(), p, req.Password)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			writeError(w, r, http.StatusConflict, model.ErrCodeError, "conflicting record")
			return
		}
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, saved)
}

// HandleUsernameUnique serves POST /v1/people/username-unique.
func (h *Handlers) HandleUsernameUnique(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req model.UsernameUniqueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body")
		return
	}
	if req.Username == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "username is required")
		return
	}

	username, err := h.people.UniqueUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, people.ErrGenerationExhausted) {
			writeError(w, r, http.StatusConflict, model.ErrCodeError, "no free username found")
			return
		}
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, model.UsernameUniqueResponse{Username: username})
}

// HandleGeneratePassword serves POST /v1/people/generate-password.
func (h *Handlers) HandleGeneratePassword(w http.ResponseWriter, r *http.Request) {
	password, err := h.people.GeneratePassword(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, model.GeneratePasswordResponse{Password: password})
}

// HandleHealth serves GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"version": h.version,
		"time":    time.Now().UTC(),
	}
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.logger.Error("health check failed", "error", err)
			resp["status"] = "degraded"
			writeJSON(w, r, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// serviceError maps service failures onto coarse transport responses.
// Permission denials surface as 404 so gated records are indistinguishable
// from absent ones; everything else is a generic 500.
func (h *Handlers) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, permission.ErrForbidden) {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "not found")
		return
	}
	h.logger.Error("request failed",
		"error", err,
		"path", r.URL.Path,
		"request_id", RequestIDFromContext(r.Context()))
	writeError(w, r, http.StatusInternalServerError, model.ErrCodeError, "internal error")
}

// attachPermalink derives the person's URL. Resolution failures leave the
// record without a URL rather than failing the response.
func (h *Handlers) attachPermalink(r *http.Request, p *model.Person) {
	page, err := h.people.FindBestPage(r.Context(), *p)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.logger.Warn("permalink resolution failed", "person", p.ID, "error", err)
		}
		return
	}
	people.Permalink(p, page)
}
