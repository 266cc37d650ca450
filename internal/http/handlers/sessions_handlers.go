package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"parkhub/internal/service"
)

// EntryRequest is the POST /api/entry payload.
type EntryRequest struct {
	Plate       string `json:"plate" validate:"required"`
	VehicleType string `json:"vehicle_type" validate:"required"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Color       string `json:"color"`
	EntryTime   string `json:"entry_time"`
}

// ExitRequest is the POST /api/exit payload.
type ExitRequest struct {
	Token string `json:"token" validate:"required"`
}

// UpdateSessionRequest is the PUT /api/sessions/{token} payload.
type UpdateSessionRequest struct {
	EntryTime string `json:"entry_time" validate:"required"`
}

// NewEntryHandler returns POST /api/entry handler.
func NewEntryHandler(svc *service.SessionsService, validate *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EntryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "Missing data")
			return
		}

		result, err := svc.Open(r.Context(), service.OpenSessionInput{
			Plate:       req.Plate,
			VehicleType: req.VehicleType,
			Brand:       req.Brand,
			Model:       req.Model,
			Color:       req.Color,
			EntryTime:   req.EntryTime,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// NewVerifyHandler returns GET /api/verify/{token} handler.
func NewVerifyHandler(svc *service.SessionsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		preview, err := svc.VerifyByToken(r.Context(), chi.URLParam(r, "token"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"plate":          preview.Plate,
			"vehicle_type":   preview.VehicleType,
			"entry_time":     preview.EntryTime,
			"duration_hours": preview.DurationHours,
			"amount":         preview.Amount,
		})
	}
}

// NewCalculatorSearchHandler returns GET /api/calculator/search handler.
func NewCalculatorSearchHandler(svc *service.SessionsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		preview, err := svc.SearchByPlate(r.Context(), r.URL.Query().Get("plate"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, preview)
	}
}

// NewExitHandler returns POST /api/exit handler.
func NewExitHandler(svc *service.SessionsService, validate *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExitRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "Missing token")
			return
		}

		result, err := svc.Close(r.Context(), req.Token)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":     "Exit confirmed",
			"amount_paid": result.AmountPaid,
		})
	}
}

// NewUpdateSessionHandler returns PUT /api/sessions/{token} handler.
func NewUpdateSessionHandler(svc *service.SessionsService, validate *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateSessionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "Missing entry_time")
			return
		}

		updated, err := svc.UpdateEntryTime(r.Context(), chi.URLParam(r, "token"), req.EntryTime)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"token":      updated.Token,
			"plate":      updated.Plate,
			"entry_time": updated.EntryTime,
			"message":    "Entry time updated",
		})
	}
}
