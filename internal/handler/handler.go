package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"enigma/internal/catalog"
	"enigma/internal/domain"
	"enigma/internal/repository"
	"enigma/internal/service"
)

// maxBodyBytes bounds request bodies; key sheets are the largest payload
const maxBodyBytes = 1 << 20

// CipherHandler handles cipher API requests
type CipherHandler struct {
	svc *service.CipherService
}

// NewCipherHandler creates a new cipher handler
func NewCipherHandler(svc *service.CipherService) *CipherHandler {
	return &CipherHandler{svc: svc}
}

// Register adds the API routes to mux
func (h *CipherHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/encipher", h.Encipher)
	mux.HandleFunc("GET /api/catalog", h.GetCatalog)
	mux.HandleFunc("GET /api/defaults", h.GetDefaults)

	// Stored settings; names may contain "/" (key sheet entries)
	mux.HandleFunc("GET /api/settings", h.ListSettings)
	mux.HandleFunc("GET /api/settings/{name...}", h.GetSettings)
	mux.HandleFunc("PUT /api/settings/{name...}", h.SaveSettings)
	mux.HandleFunc("DELETE /api/settings/{name...}", h.DeleteSettings)

	// Sessions
	mux.HandleFunc("POST /api/sessions", h.OpenSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.GetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.DeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/type", h.Type)
	mux.HandleFunc("POST /api/sessions/{id}/reset", h.ResetSession)
	mux.HandleFunc("GET /api/sessions/{id}/messages", h.Messages)

	// Key sheets
	mux.HandleFunc("POST /api/import/{format}", h.ImportSheet)
	mux.HandleFunc("GET /api/export/{format}", h.ExportSheet)
}

// Error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Encipher runs text through a fresh machine
func (h *CipherHandler) Encipher(w http.ResponseWriter, r *http.Request) {
	var req service.EncipherRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.svc.Encipher(r.Context(), req)
	if err != nil {
		h.fail(w, "Failed to encipher", err)
		return
	}

	h.writeJSON(w, result, http.StatusOK)
}

// CatalogResponse lists the built-in wheels
type CatalogResponse struct {
	Rotors      []catalog.RotorSpec `json:"rotors"`
	Reflectors  []catalog.WheelSpec `json:"reflectors"`
	EntryWheels []catalog.WheelSpec `json:"entry_wheels"`
}

// GetCatalog returns the built-in rotors, reflectors and entry wheels
func (h *CipherHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, CatalogResponse{
		Rotors:      catalog.Rotors(),
		Reflectors:  catalog.Reflectors(),
		EntryWheels: catalog.EntryWheels(),
	}, http.StatusOK)
}

// GetDefaults returns the default machine settings
func (h *CipherHandler) GetDefaults(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Defaults(), http.StatusOK)
}

// ListSettings returns all stored settings
func (h *CipherHandler) ListSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.svc.ListSettings(r.Context())
	if err != nil {
		h.fail(w, "Failed to list settings", err)
		return
	}

	h.writeJSON(w, all, http.StatusOK)
}

// GetSettings returns stored settings by name
func (h *CipherHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ns, err := h.svc.GetSettings(r.Context(), r.PathValue("name"))
	if err != nil {
		h.fail(w, "Failed to get settings", err)
		return
	}

	h.writeJSON(w, ns, http.StatusOK)
}

// SaveSettings validates and stores settings under the path name
func (h *CipherHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings domain.Settings
	if !h.decode(w, r, &settings) {
		return
	}

	ns, err := h.svc.SaveSettings(r.Context(), r.PathValue("name"), settings)
	if err != nil {
		h.fail(w, "Failed to save settings", err)
		return
	}

	h.writeJSON(w, ns, http.StatusOK)
}

// DeleteSettings removes stored settings
func (h *CipherHandler) DeleteSettings(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSettings(r.Context(), r.PathValue("name")); err != nil {
		h.fail(w, "Failed to delete settings", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// OpenSession creates a session from stored, ad hoc or default settings
func (h *CipherHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req service.OpenSessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.svc.OpenSession(r.Context(), req)
	if err != nil {
		h.fail(w, "Failed to open session", err)
		return
	}

	h.writeJSON(w, session, http.StatusCreated)
}

// GetSession returns a session with its current positions
func (h *CipherHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "Failed to get session", err)
		return
	}

	h.writeJSON(w, session, http.StatusOK)
}

// DeleteSession removes a session and its journal
func (h *CipherHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, "Failed to delete session", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TypeRequest is the body of POST /api/sessions/{id}/type
type TypeRequest struct {
	Text string `json:"text"`
}

// Type advances a session
func (h *CipherHandler) Type(w http.ResponseWriter, r *http.Request) {
	var req TypeRequest
	if !h.decode(w, r, &req) {
		return
	}

	msg, err := h.svc.Type(r.Context(), r.PathValue("id"), req.Text)
	if err != nil {
		h.fail(w, "Failed to type", err)
		return
	}

	h.writeJSON(w, msg, http.StatusOK)
}

// ResetSession returns a session to its opening positions
func (h *CipherHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.ResetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "Failed to reset session", err)
		return
	}

	h.writeJSON(w, session, http.StatusOK)
}

// Messages returns a session's journal
func (h *CipherHandler) Messages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.svc.Messages(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "Failed to list messages", err)
		return
	}

	h.writeJSON(w, msgs, http.StatusOK)
}

// ImportSheet stores every entry of a YAML or JSON key sheet
func (h *CipherHandler) ImportSheet(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	result, err := h.svc.ImportSheet(r.Context(), r.PathValue("format"), body)
	if err != nil {
		h.fail(w, "Failed to import key sheet", err)
		return
	}

	h.writeJSON(w, result, http.StatusOK)
}

// ExportSheet writes stored settings as a key sheet. ?sheet= limits the
// export to one imported sheet.
func (h *CipherHandler) ExportSheet(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	sheet := r.URL.Query().Get("sheet")

	// Buffer so a failure can still be reported as a JSON error
	var buf bytes.Buffer
	if err := h.svc.ExportSheet(r.Context(), format, sheet, &buf); err != nil {
		h.fail(w, "Failed to export key sheet", err)
		return
	}

	filename := "keysheet"
	if sheet != "" {
		filename = sheet
	}
	contentType := "application/json"
	if format != "json" {
		contentType = "application/x-yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+"."+format))
	w.Write(buf.Bytes())
}

// Helper methods

// decode reads a JSON body into v, writing a 400 on failure
func (h *CipherHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// fail maps a service error to a status code and writes it
func (h *CipherHandler) fail(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s: %v", message, err)
	}
	h.writeError(w, message, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalid),
		errors.Is(err, domain.ErrUnknownSymbol),
		errors.Is(err, domain.ErrEmptyAlphabet),
		errors.Is(err, domain.ErrDuplicateSymbol),
		domain.IsConfigError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *CipherHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *CipherHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
