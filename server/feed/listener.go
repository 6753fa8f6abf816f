package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Daskott/helmetguard/colors"
	"github.com/Daskott/helmetguard/server/alert"
	"github.com/Daskott/helmetguard/server/logger"
	"github.com/Daskott/helmetguard/server/models"
	"github.com/Daskott/helmetguard/shared"
	"github.com/r3labs/sse/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	EMERGENCY_STATUS = "EMERGENCY"
	DEFAULT_PATH     = "helmet"
	QUEUE_SIZE       = 16
)

var (
	// Resubscribe delay once the stream client gives up on its own reconnects.
	ResubscribeDelay = 5 * time.Second

	firebaseScopes = []string{
		"https://www.googleapis.com/auth/firebase.database",
		"https://www.googleapis.com/auth/userinfo.email",
	}

	logg = logger.NewLogger()
)

type Notifier interface {
	NotifyEmergency(trigger models.EmergencyTrigger, source string) (*alert.Summary, error)
}

// Listener subscribes to the helmet node of a Firebase Realtime Database and
// raises an emergency for every update whose status is EMERGENCY.
type Listener struct {
	url      string
	client   *sse.Client
	rider    shared.RiderConfig
	contacts []models.Contact
	notifier Notifier
	queue    chan models.EmergencyTrigger
	done     <-chan struct{}
}

func NewListener(config shared.FirebaseConfig, rider shared.RiderConfig, contacts []models.Contact, notifier Notifier) (*Listener, error) {
	if config.DatabaseURL == "" {
		return nil, fmt.Errorf("NewListener: firebase database url is required")
	}

	httpClient, err := newHTTPClient(config.Credentials)
	if err != nil {
		return nil, fmt.Errorf("NewListener: %v", err)
	}

	url := StreamURL(config.DatabaseURL, config.Path)
	client := sse.NewClient(url)
	client.Connection = httpClient

	return &Listener{
		url:      url,
		client:   client,
		rider:    rider,
		contacts: contacts,
		notifier: notifier,
		queue:    make(chan models.EmergencyTrigger, QUEUE_SIZE),
	}, nil
}

// StreamURL returns the REST streaming endpoint for 'path' in the database.
func StreamURL(databaseURL, path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		path = DEFAULT_PATH
	}

	return strings.TrimSuffix(databaseURL, "/") + "/" + path + ".json"
}

// Start subscribes to the feed and starts processing emergencies in the background.
// Both stop when ctx is cancelled.
func (l *Listener) Start(ctx context.Context) {
	l.done = ctx.Done()

	go l.processQueue(ctx)
	go l.subscribe(ctx)
}

func (l *Listener) subscribe(ctx context.Context) {
	for {
		l.logInfof("subscribing to %v", l.url)

		err := l.client.SubscribeRawWithContext(ctx, l.handleEvent)
		if ctx.Err() != nil {
			l.logInfof("subscription to %v stopped", l.url)
			return
		}

		l.logErrorf("subscription to %v ended: %v, resubscribing in %v", l.url, err, ResubscribeDelay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(ResubscribeDelay):
		}
	}
}

func (l *Listener) handleEvent(msg *sse.Event) {
	switch event := string(msg.Event); event {
	case "put", "patch":
		l.OnUpdate(msg.Data)
	case "keep-alive", "":
	case "cancel", "auth_revoked":
		l.logErrorf("feed sent '%v': %s", event, msg.Data)
	default:
		l.logInfof("ignoring feed event '%v'", event)
	}
}

// OnUpdate handles one update pushed by the feed. Nothing it does may stop the
// subscription, so every failure, panics included, is logged and dropped.
func (l *Listener) OnUpdate(payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			l.logErrorf("recovered while handling update: %v", r)
		}
	}()

	l.logInfof("Firebase update received: %s", payload)

	update := struct {
		Path string          `json:"path"`
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(payload, &update); err != nil {
		l.logErrorf("unable to decode update: %v", err)
		return
	}

	trigger, ok := TriggerFromPayload(update.Data, l.rider, l.contacts)
	if !ok {
		return
	}

	select {
	case l.queue <- *trigger:
	case <-l.done:
	}
}

// TriggerFromPayload turns a helmet status record into an EmergencyTrigger. It reports
// false for anything that is not a JSON object with status EMERGENCY.
func TriggerFromPayload(data []byte, rider shared.RiderConfig, contacts []models.Contact) (*models.EmergencyTrigger, bool) {
	record := map[string]interface{}{}
	if err := json.Unmarshal(data, &record); err != nil || record == nil {
		return nil, false
	}

	if status, _ := record["status"].(string); status != EMERGENCY_STATUS {
		return nil, false
	}

	trigger := &models.EmergencyTrigger{
		RiderName:   rider.Name,
		RiderPhone:  rider.Phone,
		BloodGroup:  rider.BloodGroup,
		Vehicle:     rider.Vehicle,
		CrashGforce: models.Reading(readingValue(record["gforce"])),
		Latitude:    firstFloat(record, "latitude", "lat"),
		Longitude:   firstFloat(record, "longitude", "lng", "lon"),
		Contacts:    contacts,
	}

	if name, ok := record["riderName"].(string); ok && name != "" {
		trigger.RiderName = name
	}

	if trigger.RiderName == "" {
		trigger.RiderName = "Rider"
	}

	return trigger, true
}

// ContactsWithFallback returns the configured feed contacts, or a single contact
// for 'fallbackRecipient' when none are configured.
func ContactsWithFallback(contacts []shared.ContactConfig, fallbackRecipient string) []models.Contact {
	result := make([]models.Contact, 0, len(contacts))
	for _, contact := range contacts {
		result = append(result, models.Contact{Name: contact.Name, Phone: contact.Phone, Relation: contact.Relation})
	}

	if len(result) == 0 && fallbackRecipient != "" {
		result = append(result, models.Contact{Name: "Emergency Contact", Phone: fallbackRecipient})
	}

	return result
}

func (l *Listener) processQueue(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case trigger := <-l.queue:
			l.notify(trigger)
		}
	}
}

func (l *Listener) notify(trigger models.EmergencyTrigger) {
	defer func() {
		if r := recover(); r != nil {
			l.logErrorf("recovered while notifying contacts: %v", r)
		}
	}()

	summary, err := l.notifier.NotifyEmergency(trigger, models.FEED_SOURCE)
	if err != nil {
		l.logErrorf("unable to raise emergency for %v: %v", trigger.RiderName, err)
		return
	}

	l.logInfof("%v", summary.Message())
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func newHTTPClient(credentialsFile string) (*http.Client, error) {
	if credentialsFile == "" {
		return &http.Client{}, nil
	}

	data, err := ioutil.ReadFile(credentialsFile)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	credentials, err := google.CredentialsFromJSON(ctx, data, firebaseScopes...)
	if err != nil {
		return nil, err
	}

	return oauth2.NewClient(ctx, credentials.TokenSource), nil
}

func readingValue(value interface{}) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return ""
	}
}

func firstFloat(record map[string]interface{}, keys ...string) *float64 {
	for _, key := range keys {
		switch v := record[key].(type) {
		case float64:
			return &v
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func (l *Listener) logInfof(template string, args ...interface{}) {
	logg.Infof(colors.Prefix(colors.Cyan, "feed")+template, args...)
}

func (l *Listener) logErrorf(template string, args ...interface{}) {
	logg.Errorf(colors.Prefix(colors.Red, "feed")+template, args...)
}
