package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"parkhub/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps a categorized service failure onto the wire,
// attaching the frozen amount on already-closed conflicts.
func writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	payload := map[string]interface{}{
		"error": svcErr.Message,
		"code":  string(svcErr.Category),
	}
	if svcErr.AmountPaid != nil {
		payload["amount_paid"] = *svcErr.AmountPaid
	}
	writeJSON(w, statusFor(svcErr.Category), payload)
}

func statusFor(category service.Category) int {
	switch category {
	case service.CategoryValidation:
		return http.StatusBadRequest
	case service.CategoryNotFound:
		return http.StatusNotFound
	case service.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
