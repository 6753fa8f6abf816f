package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Daskott/helmetguard/server/alert"
	"github.com/Daskott/helmetguard/server/models"
	"github.com/Daskott/helmetguard/version"
	"github.com/go-playground/validator"
)

const (
	SERVICE_NAME = "HelmetGuard Monitoring Server"

	TWILIO_CONNECTED      = "connected"
	TWILIO_NOT_CONFIGURED = "not configured"
)

type ResponsePayload struct {
	Errors  []string `json:"errors"`
	Success bool     `json:"success"`
}

type AlertResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message,omitempty"`
	Results []models.DeliveryResult `json:"results"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Twilio    string `json:"twilio"`
	Timestamp string `json:"timestamp"`
}

type EventsResponse struct {
	Events []models.EventRecord `json:"events"`
}

type EventReader interface {
	ReadAll() ([]models.EventRecord, error)
}

type handlers struct {
	notifier *alert.Notifier
	events   EventReader
	validate *validator.Validate
}

func (h *handlers) health(rw http.ResponseWriter, r *http.Request) {
	twilioStatus := TWILIO_NOT_CONFIGURED
	if h.notifier.GatewayConfigured() {
		twilioStatus = TWILIO_CONNECTED
	}

	json.NewEncoder(rw).Encode(HealthResponse{
		Status:    "running",
		Service:   SERVICE_NAME,
		Version:   version.Version,
		Twilio:    twilioStatus,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (h *handlers) sendEmergencySms(rw http.ResponseWriter, r *http.Request) {
	trigger := models.EmergencyTrigger{}
	if !h.decodeAndValidate(rw, r, &trigger) {
		return
	}

	summary, err := h.notifier.NotifyEmergency(trigger, models.API_SOURCE)
	if err != nil {
		writeAlertError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(AlertResponse{
		Success: true,
		Message: summary.Message(),
		Results: summary.Results,
	})
}

func (h *handlers) shareLocation(rw http.ResponseWriter, r *http.Request) {
	share := models.LocationShare{}
	if !h.decodeAndValidate(rw, r, &share) {
		return
	}

	summary, err := h.notifier.ShareLocation(share)
	if err != nil {
		writeAlertError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(AlertResponse{Success: true, Results: summary.Results})
}

func (h *handlers) listEvents(rw http.ResponseWriter, r *http.Request) {
	events, err := h.events.ReadAll()
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(EventsResponse{Events: events})
}

// decodeAndValidate reads the JSON body into 'data'. On failure it writes a 400 and returns false.
func (h *handlers) decodeAndValidate(rw http.ResponseWriter, r *http.Request, data interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{"invalid request body: " + err.Error()}}, http.StatusBadRequest)
		return false
	}

	errs := h.validate.Struct(data)
	if errs != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
		return false
	}

	return true
}

func writeAlertError(rw http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, alert.ErrNoContacts):
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
	case errors.Is(err, alert.ErrGatewayUnavailable):
		writeResponse(rw,
			ResponsePayload{Errors: []string{"Twilio not configured. Add credentials to .env"}},
			http.StatusServiceUnavailable,
		)
	default:
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
	}
}
