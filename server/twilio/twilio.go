package twilio

import (
	"fmt"
	"strings"

	"github.com/Daskott/helmetguard/shared"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

const DEFAULT_COUNTRY_CODE = "+91"

// GatewayError is returned when the carrier refuses or fails to accept a message.
type GatewayError struct {
	To     string
	Reason string
}

func (e *GatewayError) Error() string {
	return e.Reason
}

type CallerID struct {
	PhoneNumber  string
	FriendlyName string
}

type ClientWrapper struct {
	client      *twilio.RestClient
	config      shared.TwilioConfig
	countryCode string
}

func NewClient(config shared.TwilioConfig, countryCode string) *ClientWrapper {
	client := twilio.NewRestClientWithParams(twilio.RestClientParams{
		Username: config.AccountSid,
		Password: config.AuthToken,
	})

	if countryCode == "" {
		countryCode = DEFAULT_COUNTRY_CODE
	}

	return &ClientWrapper{
		client:      client,
		config:      config,
		countryCode: countryCode,
	}
}

// Configured reports whether the config carries enough to talk to twilio.
func Configured(config shared.TwilioConfig) bool {
	return config.AccountSid != "" && config.AuthToken != ""
}

func (cw *ClientWrapper) NormalizeNumber(phone string) string {
	return NormalizePhone(phone, cw.countryCode)
}

// SendMessage sends 'msg' to 'to' and returns the message SID. There is no retry,
// a failed send is reported to the caller as a *GatewayError.
func (cw *ClientWrapper) SendMessage(to, msg string) (string, error) {
	to = cw.NormalizeNumber(to)

	params := &openapi.CreateMessageParams{}
	params.SetFrom(cw.config.SenderNumber)
	params.SetTo(to)
	params.SetBody(msg)

	resp, err := cw.client.ApiV2010.CreateMessage(params)
	if err != nil {
		return "", &GatewayError{To: to, Reason: err.Error()}
	}

	if resp.ErrorMessage != nil && *resp.ErrorMessage != "" {
		return "", &GatewayError{To: to, Reason: *resp.ErrorMessage}
	}

	if resp.Sid == nil {
		return "", &GatewayError{To: to, Reason: "twilio returned no message sid"}
	}

	return *resp.Sid, nil
}

// VerifiedCallerIDs lists the numbers a trial account is allowed to text.
func (cw *ClientWrapper) VerifiedCallerIDs() ([]CallerID, error) {
	callerIDs, err := cw.client.ApiV2010.ListOutgoingCallerId(&openapi.ListOutgoingCallerIdParams{})
	if err != nil {
		return nil, fmt.Errorf("VerifiedCallerIDs: %v", err)
	}

	result := make([]CallerID, 0, len(callerIDs))
	for _, callerID := range callerIDs {
		result = append(result, CallerID{
			PhoneNumber:  stringValue(callerID.PhoneNumber),
			FriendlyName: stringValue(callerID.FriendlyName),
		})
	}

	return result, nil
}

// NormalizePhone prefixes 'countryCode' to numbers without a leading '+'.
// Numbers already in E.164 form are returned unchanged.
func NormalizePhone(phone, countryCode string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "+") {
		return phone
	}

	if !strings.HasPrefix(countryCode, "+") {
		countryCode = "+" + countryCode
	}

	return countryCode + phone
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
