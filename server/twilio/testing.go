package twilio

import (
	"fmt"
	"regexp"
	"sync"
)

var e164Regex = regexp.MustCompile(`^\+[1-9][0-9]{1,14}$`)

type SentMessage struct {
	To   string
	Body string
}

// ClientStub stands in for ClientWrapper when no real messages should go out.
type ClientStub struct {
	Sid         string
	CountryCode string

	// FailFor maps a normalized number to the reason its send should fail with.
	FailFor map[string]string

	CallerIDs      []CallerID
	CallerIDsError error

	mu   sync.Mutex
	sent []SentMessage
}

func (stub *ClientStub) NormalizeNumber(phone string) string {
	countryCode := stub.CountryCode
	if countryCode == "" {
		countryCode = DEFAULT_COUNTRY_CODE
	}
	return NormalizePhone(phone, countryCode)
}

func (stub *ClientStub) SendMessage(to, msg string) (string, error) {
	to = stub.NormalizeNumber(to)

	stub.mu.Lock()
	defer stub.mu.Unlock()

	stub.sent = append(stub.sent, SentMessage{To: to, Body: msg})

	if reason, ok := stub.FailFor[to]; ok {
		return "", &GatewayError{To: to, Reason: reason}
	}

	// Same rejection the carrier gives for numbers it cannot parse
	if !e164Regex.MatchString(to) {
		return "", &GatewayError{To: to, Reason: fmt.Sprintf("The 'To' number %v is not a valid phone number.", to)}
	}

	if stub.Sid != "" {
		return stub.Sid, nil
	}
	return fmt.Sprintf("SM%d", len(stub.sent)), nil
}

func (stub *ClientStub) VerifiedCallerIDs() ([]CallerID, error) {
	return stub.CallerIDs, stub.CallerIDsError
}

// Sent returns a copy of every message passed to SendMessage, in call order.
func (stub *ClientStub) Sent() []SentMessage {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	sent := make([]SentMessage, len(stub.sent))
	copy(sent, stub.sent)
	return sent
}
