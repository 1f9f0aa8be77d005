package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/hpol369/gold-ira-platform-sub026/internal/usecase"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Success       bool     `json:"success"`
	Error         string   `json:"error"`
	Message       string   `json:"message"`
	Fields        []string `json:"fields,omitempty"`
	MissingFields []string `json:"missingFields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeUsecaseError maps domain errors to their status and hides everything
// else behind a generic 500.
func writeUsecaseError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		writeJSON(w, de.HTTPStatus(), ErrorResponse{
			Error:         de.Code,
			Message:       de.Message,
			Fields:        de.Fields,
			MissingFields: de.Missing,
		})
		return
	}

	code := "INTERNAL_ERROR"
	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		code = te.Code
	}
	log.WithError(err).Error("❌ Request failed")
	writeErrorResponse(w, http.StatusInternalServerError, code, "Something went wrong. Please try again.")
}

// decodeJSON reads a JSON body. A malformed body is reported as INVALID_JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeInvalidJSON, "Invalid JSON body")
		return false
	}
	return true
}
