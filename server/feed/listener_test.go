package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Daskott/helmetguard/server/alert"
	"github.com/Daskott/helmetguard/server/models"
	"github.com/Daskott/helmetguard/shared"
	"github.com/r3labs/sse/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notifierStub struct {
	triggers chan models.EmergencyTrigger
	panics   bool
}

func (n *notifierStub) NotifyEmergency(trigger models.EmergencyTrigger, source string) (*alert.Summary, error) {
	if n.panics {
		panic("boom")
	}
	n.triggers <- trigger
	return &alert.Summary{TotalCount: len(trigger.Contacts)}, nil
}

var (
	testRider    = shared.RiderConfig{Name: "Tony", Phone: "9000000000", BloodGroup: "O+"}
	testContacts = []models.Contact{{Name: "Mom", Phone: "9876543210"}}
)

func newTestListener(t *testing.T, databaseURL string, notifier Notifier) *Listener {
	listener, err := NewListener(
		shared.FirebaseConfig{DatabaseURL: databaseURL, Path: "/helmet/"},
		testRider,
		testContacts,
		notifier,
	)
	require.Nil(t, err)
	return listener
}

func TestStreamURL(t *testing.T) {
	assert.Equal(t, "https://demo.firebaseio.com/helmet.json", StreamURL("https://demo.firebaseio.com/", ""))
	assert.Equal(t, "https://demo.firebaseio.com/riders/42.json", StreamURL("https://demo.firebaseio.com", "/riders/42/"))
}

func TestNewListenerRequiresURL(t *testing.T) {
	_, err := NewListener(shared.FirebaseConfig{}, testRider, testContacts, &notifierStub{})
	assert.NotNil(t, err)
}

func TestTriggerFromPayload(t *testing.T) {
	testCases := []struct {
		description string
		data        string
		forwarded   bool
	}{
		{"Should forward an emergency record", `{"status":"EMERGENCY","gforce":4.2}`, true},
		{"Should drop a non emergency record", `{"status":"OK","gforce":0.9}`, false},
		{"Should drop a record without status", `{"gforce":4.2}`, false},
		{"Should drop a bare status value", `"EMERGENCY"`, false},
		{"Should drop a deleted node", `null`, false},
		{"Should drop a list", `[{"status":"EMERGENCY"}]`, false},
		{"Should drop malformed json", `{"status":`, false},
		{"Should drop a non string status", `{"status":1}`, false},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			_, ok := TriggerFromPayload([]byte(tc.data), testRider, testContacts)
			assert.Equal(t, tc.forwarded, ok)
		})
	}
}

func TestTriggerFromPayloadFields(t *testing.T) {
	trigger, ok := TriggerFromPayload(
		[]byte(`{"status":"EMERGENCY","gforce":"5.1","lat":12.97,"lng":"77.59"}`), testRider, testContacts)
	require.True(t, ok)

	assert.Equal(t, "Tony", trigger.RiderName)
	assert.Equal(t, "9000000000", trigger.RiderPhone)
	assert.Equal(t, "O+", trigger.BloodGroup)
	assert.Equal(t, models.Reading("5.1"), trigger.CrashGforce)
	assert.Equal(t, 12.97, *trigger.Latitude)
	assert.Equal(t, 77.59, *trigger.Longitude)
	assert.Equal(t, testContacts, trigger.Contacts)

	trigger, ok = TriggerFromPayload([]byte(`{"status":"EMERGENCY","riderName":"Peter"}`), shared.RiderConfig{}, nil)
	require.True(t, ok)
	assert.Equal(t, "Peter", trigger.RiderName)
	assert.Nil(t, trigger.Latitude)
	assert.Equal(t, models.Reading(""), trigger.CrashGforce)
}

func TestContactsWithFallback(t *testing.T) {
	configured := []shared.ContactConfig{{Name: "Mom", Phone: "9876543210", Relation: "mother"}}

	assert.Equal(t,
		[]models.Contact{{Name: "Mom", Phone: "9876543210", Relation: "mother"}},
		ContactsWithFallback(configured, "+911111111111"))

	assert.Equal(t,
		[]models.Contact{{Name: "Emergency Contact", Phone: "+911111111111"}},
		ContactsWithFallback(nil, "+911111111111"))

	assert.Empty(t, ContactsWithFallback(nil, ""))
}

func TestOnUpdateQueuesEmergencies(t *testing.T) {
	listener := newTestListener(t, "https://demo.firebaseio.com", &notifierStub{})

	listener.OnUpdate([]byte(`{"path":"/","data":{"status":"OK"}}`))
	listener.OnUpdate([]byte(`not json`))
	listener.OnUpdate([]byte(`{"path":"/status","data":"EMERGENCY"}`))
	listener.OnUpdate([]byte(`{"path":"/","data":{"status":"EMERGENCY","gforce":6}}`))

	assert.Len(t, listener.queue, 1, "Only the structured emergency record should be queued")
	trigger := <-listener.queue
	assert.Equal(t, models.Reading("6"), trigger.CrashGforce)
}

func TestHandleEventIgnoresKeepAlive(t *testing.T) {
	listener := newTestListener(t, "https://demo.firebaseio.com", &notifierStub{})

	listener.handleEvent(&sse.Event{Event: []byte("keep-alive"), Data: []byte("null")})
	listener.handleEvent(&sse.Event{Event: []byte("cancel"), Data: []byte(`"permission denied"`)})
	listener.handleEvent(&sse.Event{Event: []byte("patch"), Data: []byte(`{"path":"/","data":{"status":"EMERGENCY"}}`)})

	assert.Len(t, listener.queue, 1)
}

func TestNotifyRecoversFromPanics(t *testing.T) {
	listener := newTestListener(t, "https://demo.firebaseio.com", &notifierStub{panics: true})

	assert.NotPanics(t, func() {
		listener.notify(models.EmergencyTrigger{RiderName: "Tony", Contacts: testContacts})
	})
}

func TestStartForwardsStreamedEmergencies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/helmet.json", r.URL.Path)

		rw.Header().Set("Content-Type", "text/event-stream")
		rw.WriteHeader(http.StatusOK)

		fmt.Fprint(rw, "event: keep-alive\ndata: null\n\n")
		fmt.Fprint(rw, "event: put\ndata: {\"path\":\"/\",\"data\":{\"status\":\"OK\"}}\n\n")
		fmt.Fprint(rw, "event: put\ndata: {\"path\":\"/\",\"data\":{\"status\":\"EMERGENCY\",\"gforce\":4.2}}\n\n")
		rw.(http.Flusher).Flush()

		<-r.Context().Done()
	}))
	defer server.Close()

	notifier := &notifierStub{triggers: make(chan models.EmergencyTrigger, 1)}
	listener := newTestListener(t, server.URL, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listener.Start(ctx)

	select {
	case trigger := <-notifier.triggers:
		assert.Equal(t, "Tony", trigger.RiderName)
		assert.Equal(t, models.Reading("4.2"), trigger.CrashGforce)
	case <-time.After(5 * time.Second):
		t.Fatal("Expected the streamed emergency to reach the notifier")
	}
}
