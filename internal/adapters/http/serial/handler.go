package serial

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	appserial "3tcapital/ms_numeracion_core/internal/application/serial"
	"3tcapital/ms_numeracion_core/internal/core/serial"
	httperrors "3tcapital/ms_numeracion_core/internal/infrastructure/http"
	"3tcapital/ms_numeracion_core/internal/infrastructure/http/middleware"
	"3tcapital/ms_numeracion_core/internal/infrastructure/logger"
)

const defaultPageLength = 10

// Handler bridges HTTP traffic with the serial application service.
type Handler struct {
	service *appserial.Service
	log     *slog.Logger
}

// NewHandler creates a new serial HTTP handler.
func NewHandler(service *appserial.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{service: service, log: log}
}

// ListSettings handles GET /api/serial-settings.
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	req, err := parseListRequest(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp, err := h.service.ListSettings(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// CreateSetting handles POST /api/serial-settings.
func (h *Handler) CreateSetting(w http.ResponseWriter, r *http.Request) {
	var in appserial.SettingInput
	if !h.decode(w, r, &in) {
		return
	}

	setting, err := h.service.CreateSetting(r.Context(), in)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	logger.WithCorrelation(r.Context(), h.log).Info("serial setting created via API", "id", setting.ID, "actor", middleware.Subject(r.Context()))
	h.writeJSON(w, http.StatusCreated, setting)
}

// GetSetting handles GET /api/serial-settings/{id}.
func (h *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	setting, err := h.service.GetSetting(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, setting)
}

// UpdateSetting handles PATCH /api/serial-settings/{id}.
func (h *Handler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	var in appserial.SettingInput
	if !h.decode(w, r, &in) {
		return
	}

	id := chi.URLParam(r, "id")
	setting, err := h.service.UpdateSetting(r.Context(), id, in)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	logger.WithCorrelation(r.Context(), h.log).Info("serial setting updated via API", "id", id, "actor", middleware.Subject(r.Context()))
	h.writeJSON(w, http.StatusOK, setting)
}

// DeleteSetting handles DELETE /api/serial-settings/{id}.
func (h *Handler) DeleteSetting(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteSetting(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	logger.WithCorrelation(r.Context(), h.log).Info("serial setting deleted via API", "id", id, "actor", middleware.Subject(r.Context()))
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// PreviewDraft handles POST /api/serial-settings/preview. The body is a draft
// setting; a missing or unreadable body previews the defaults.
func (h *Handler) PreviewDraft(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.service.ParseAsOf(r.URL.Query().Get("asOf"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var in appserial.SettingInput
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			in = appserial.SettingInput{}
		}
	}

	h.writeJSON(w, http.StatusOK, h.service.PreviewDraft(in, asOf))
}

// PreviewSetting handles GET /api/serial-settings/{id}/preview.
func (h *Handler) PreviewSetting(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.service.ParseAsOf(r.URL.Query().Get("asOf"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp, err := h.service.PreviewSetting(r.Context(), chi.URLParam(r, "id"), asOf)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// ListIssues handles GET /api/serial-settings/{id}/issues.
func (h *Handler) ListIssues(w http.ResponseWriter, r *http.Request) {
	verr := &serial.ValidationError{}
	limit := queryInt(r, "limit", 0, verr)
	if err := verr.OrNil(); err != nil {
		h.handleError(w, r, err)
		return
	}

	resp, err := h.service.ListIssues(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// IssueNext handles POST /api/serial-numbers/issue.
func (h *Handler) IssueNext(w http.ResponseWriter, r *http.Request) {
	var req appserial.IssueRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.IssueNext(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	logger.WithCorrelation(r.Context(), h.log).Info("serial number issued via API",
		"setting_id", resp.SettingID,
		"serial", resp.Serial,
		"actor", middleware.Subject(r.Context()),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la solicitud es requerido"}, h.log)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.log.Warn("invalid request body", "path", r.URL.Path, "error", err)
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la solicitud no es un JSON válido"}, h.log)
		return false
	}
	return true
}

// handleError maps domain errors to appropriate HTTP status codes.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *serial.ValidationError

	switch {
	case errors.As(err, &verr):
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", verr.Messages(), h.log)
	case errors.Is(err, serial.ErrNotFound):
		httperrors.WriteError(w, http.StatusNotFound, "Recurso no encontrado", []string{"La configuración de numeración no existe"}, h.log)
	case errors.Is(err, serial.ErrDuplicateScope):
		httperrors.WriteError(w, http.StatusConflict, "Conflicto", []string{"Ya existe una configuración activa para esta propiedad, tipo de documento y tienda"}, h.log)
	case errors.Is(err, serial.ErrNoActiveSetting):
		httperrors.WriteError(w, http.StatusUnprocessableEntity, "Error de Negocio", []string{"No existe una configuración activa para esta propiedad, tipo de documento y tienda"}, h.log)
	default:
		logger.WithCorrelation(r.Context(), h.log).Error("serial request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		httperrors.WriteError(w, http.StatusInternalServerError, "Error Interno del Servidor", []string{"Ha ocurrido un error interno"}, h.log)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	httperrors.WriteJSON(w, status, payload, h.log)
}

func parseListRequest(r *http.Request) (appserial.ListRequest, error) {
	q := r.URL.Query()
	verr := &serial.ValidationError{}

	req := appserial.ListRequest{
		Start:          queryInt(r, "start", 0, verr),
		Length:         queryInt(r, "length", defaultPageLength, verr),
		Buscar:         q.Get("buscar"),
		ColumnaOrden:   q.Get("columnaOrden"),
		OrdenDireccion: strings.ToLower(q.Get("ordenDireccion")),
		PropertyCode:   q.Get("propertyCode"),
		DocType:        q.Get("docType"),
	}

	if raw := strings.TrimSpace(q.Get("isActive")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			verr.Add("isActive", "must be a boolean")
		} else {
			req.IsActive = &active
		}
	}

	return req, verr.OrNil()
}

func queryInt(r *http.Request, name string, def int, verr *serial.ValidationError) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		verr.Add(name, "must be a number")
		return def
	}
	return v
}
