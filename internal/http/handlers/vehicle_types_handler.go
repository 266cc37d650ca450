package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"parkhub/internal/service"
)

// CreateVehicleTypeRequest is the POST /api/vehicle-types payload. HourlyRate
// is a pointer so an explicit zero rate passes the required check.
type CreateVehicleTypeRequest struct {
	VehicleType string   `json:"vehicle_type" validate:"required"`
	HourlyRate  *float64 `json:"hourly_rate" validate:"required,gte=0"`
}

// UpdateVehicleTypeRequest is the PUT /api/vehicle-types/{id} payload.
type UpdateVehicleTypeRequest struct {
	VehicleType *string  `json:"vehicle_type"`
	HourlyRate  *float64 `json:"hourly_rate" validate:"omitempty,gte=0"`
}

// NewListVehicleTypesHandler returns GET /api/vehicle-types handler.
func NewListVehicleTypesHandler(svc *service.RatesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses, err := svc.List(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if statuses == nil {
			statuses = []service.RateStatus{}
		}
		writeJSON(w, http.StatusOK, statuses)
	}
}

// NewCreateVehicleTypeHandler returns POST /api/vehicle-types handler.
func NewCreateVehicleTypeHandler(svc *service.RatesService, validate *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateVehicleTypeRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "Missing required fields")
			return
		}

		rate, err := svc.Create(r.Context(), req.VehicleType, *req.HourlyRate)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rate)
	}
}

// NewUpdateVehicleTypeHandler returns PUT /api/vehicle-types/{id} handler.
func NewUpdateVehicleTypeHandler(svc *service.RatesService, validate *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusNotFound, "Vehicle type not found")
			return
		}

		var req UpdateVehicleTypeRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "Hourly rate cannot be negative")
			return
		}

		rate, err := svc.Update(r.Context(), id, service.UpdateRateInput{
			VehicleType: req.VehicleType,
			HourlyRate:  req.HourlyRate,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rate)
	}
}

// NewDeleteVehicleTypeHandler returns DELETE /api/vehicle-types/{id} handler.
func NewDeleteVehicleTypeHandler(svc *service.RatesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusNotFound, "Vehicle type not found")
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Vehicle type deleted successfully"})
	}
}
