package twilio

import (
	"testing"

	"github.com/Daskott/helmetguard/shared"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	testCases := []struct {
		description string
		phone       string
		countryCode string
		expected    string
	}{
		{"Should prefix country code to raw digits", "9876543210", "+91", "+919876543210"},
		{"Should leave E.164 numbers unchanged", "+14155550100", "+91", "+14155550100"},
		{"Should add '+' to a bare country code", "9876543210", "91", "+919876543210"},
		{"Should trim surrounding whitespace", " 9876543210 ", "+91", "+919876543210"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizePhone(tc.phone, tc.countryCode))
		})
	}
}

func TestClientStub(t *testing.T) {
	stub := &ClientStub{FailFor: map[string]string{"+911111111111": "unverified number"}}

	sid, err := stub.SendMessage("9876543210", "hello")
	assert.Nil(t, err)
	assert.Equal(t, "SM1", sid)

	_, err = stub.SendMessage("1111111111", "hello")
	assert.EqualError(t, err, "unverified number")

	gatewayErr, ok := err.(*GatewayError)
	assert.True(t, ok, "Should return a *GatewayError")
	assert.Equal(t, "+911111111111", gatewayErr.To)

	assert.Equal(t, []SentMessage{
		{To: "+919876543210", Body: "hello"},
		{To: "+911111111111", Body: "hello"},
	}, stub.Sent())
}

func TestClientStubRejectsMalformedNumber(t *testing.T) {
	stub := &ClientStub{}

	_, err := stub.SendMessage("98765 43210", "hello")
	assert.EqualError(t, err, "The 'To' number +9198765 43210 is not a valid phone number.")
	assert.Len(t, stub.Sent(), 1)
}

func TestConfigured(t *testing.T) {
	assert.False(t, Configured(shared.TwilioConfig{}))
	assert.False(t, Configured(shared.TwilioConfig{AccountSid: "AC123"}))
	assert.True(t, Configured(shared.TwilioConfig{AccountSid: "AC123", AuthToken: "token"}))
}
