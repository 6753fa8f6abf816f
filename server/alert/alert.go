package alert

import (
	"errors"
	"fmt"
	"time"

	"github.com/Daskott/helmetguard/colors"
	"github.com/Daskott/helmetguard/server/logger"
	"github.com/Daskott/helmetguard/server/models"
)

var (
	ErrNoContacts         = errors.New("no emergency contacts provided")
	ErrGatewayUnavailable = errors.New("sms gateway is not configured")

	logg = logger.NewLogger()
)

// Gateway sends a single text message and returns the carrier's message id.
type Gateway interface {
	NormalizeNumber(phone string) string
	SendMessage(to, body string) (string, error)
}

type EventRecorder interface {
	Append(record models.EventRecord) error
}

type Summary struct {
	SentCount  int                     `json:"sent_count"`
	TotalCount int                     `json:"total_count"`
	Results    []models.DeliveryResult `json:"results"`
}

func (summary *Summary) Message() string {
	return fmt.Sprintf("Emergency SMS sent to %d/%d contacts", summary.SentCount, summary.TotalCount)
}

// Notifier texts a rider's contacts and keeps the audit trail of emergencies.
type Notifier struct {
	gateway  Gateway
	recorder EventRecorder
	location *time.Location
	now      func() time.Time
}

// NewNotifier builds a Notifier. 'gateway' may be nil, in which case every send
// fails with ErrGatewayUnavailable.
func NewNotifier(gateway Gateway, recorder EventRecorder, location *time.Location) *Notifier {
	if location == nil {
		location = time.UTC
	}

	return &Notifier{
		gateway:  gateway,
		recorder: recorder,
		location: location,
		now:      time.Now,
	}
}

func (n *Notifier) GatewayConfigured() bool {
	return n.gateway != nil
}

// NotifyEmergency sends the emergency text to every contact in 'trigger', then
// appends exactly one EventRecord describing every attempt. A failed send never
// stops the remaining contacts from being tried, and a failed log write is only logged.
func (n *Notifier) NotifyEmergency(trigger models.EmergencyTrigger, source string) (*Summary, error) {
	if err := n.checkPreconditions(trigger.Contacts); err != nil {
		return nil, err
	}

	logg.Warnf("%sEMERGENCY for %v from %v", colors.Prefix(colors.Red, "alert"), trigger.RiderName, source)

	now := n.now()
	mapLink := MapLink(trigger.Latitude, trigger.Longitude)
	body := EmergencyMessage(EmergencyDetails{
		RiderName:  trigger.RiderName,
		RiderPhone: n.gateway.NormalizeNumber(trigger.RiderPhone),
		BloodGroup: trigger.BloodGroup,
		Vehicle:    trigger.Vehicle,
		Gforce:     trigger.CrashGforce.OrUnknown(),
		MapLink:    mapLink,
		Time:       now.In(n.location),
	})

	summary := n.sendToAll(trigger.Contacts, body)

	record := models.EventRecord{
		Type:       models.EMERGENCY_EVENT,
		Source:     source,
		Timestamp:  now.UTC(),
		Rider:      trigger.RiderName,
		RiderPhone: trigger.RiderPhone,
		BloodGroup: trigger.BloodGroup,
		Vehicle:    trigger.Vehicle,
		Gforce:     trigger.CrashGforce,
		Location:   models.Location{Lat: trigger.Latitude, Lng: trigger.Longitude},
		MapLink:    mapLink,
		SmsSent:    summary.SentCount,
		SmsResults: summary.Results,
	}

	if n.recorder != nil {
		if err := n.recorder.Append(record); err != nil {
			logg.Errorf("%sfailed to save event: %v", colors.Prefix(colors.Red, "alert"), err)
		} else {
			logg.Info("Event saved to local log")
		}
	}

	return summary, nil
}

// ShareLocation texts the rider's position to every contact. Location shares
// are not emergencies and never reach the event log.
func (n *Notifier) ShareLocation(share models.LocationShare) (*Summary, error) {
	if err := n.checkPreconditions(share.Contacts); err != nil {
		return nil, err
	}

	body := LocationMessage(share.RiderName, MapLink(share.Latitude, share.Longitude))

	return n.sendToAll(share.Contacts, body), nil
}

func (n *Notifier) checkPreconditions(contacts []models.Contact) error {
	if n.gateway == nil {
		return ErrGatewayUnavailable
	}

	if len(contacts) == 0 {
		return ErrNoContacts
	}

	return nil
}

// sendToAll sends 'body' to each contact in order, one result per contact.
func (n *Notifier) sendToAll(contacts []models.Contact, body string) *Summary {
	results := make([]models.DeliveryResult, 0, len(contacts))

	for _, contact := range contacts {
		results = append(results, n.send(contact, body))
	}

	return &Summary{
		SentCount:  models.CountSent(results),
		TotalCount: len(contacts),
		Results:    results,
	}
}

func (n *Notifier) send(contact models.Contact, body string) models.DeliveryResult {
	phone := n.gateway.NormalizeNumber(contact.Phone)
	result := models.DeliveryResult{Contact: contact.Name, Phone: phone}

	sid, err := n.gateway.SendMessage(phone, body)
	if err != nil {
		result.Status = models.FAILED_DELIVERY
		result.Error = err.Error()
		logg.Errorf("%sSMS to %v (%v) failed: %v", colors.Prefix(colors.Red, "alert"), contact.Name, phone, err)
		return result
	}

	result.Status = models.SENT_DELIVERY
	result.Sid = sid
	logg.Infof("%sSMS sent to %v (%v), SID: %v", colors.Prefix(colors.Green, "alert"), contact.Name, phone, sid)

	return result
}
