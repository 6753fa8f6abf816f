package models

import "time"

const (
	EMERGENCY_EVENT = "EMERGENCY"

	API_SOURCE  = "api"
	FEED_SOURCE = "feed"
)

type Location struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// EventRecord is one entry of the audit log. Records are only ever appended, never updated.
type EventRecord struct {
	Type       string           `json:"type"`
	Source     string           `json:"source"`
	Timestamp  time.Time        `json:"timestamp"`
	Rider      string           `json:"rider"`
	RiderPhone string           `json:"riderPhone"`
	BloodGroup string           `json:"bloodGroup,omitempty"`
	Vehicle    string           `json:"vehicle,omitempty"`
	Gforce     Reading          `json:"gforce,omitempty"`
	Location   Location         `json:"location"`
	MapLink    string           `json:"mapLink"`
	SmsSent    int              `json:"sms_sent"`
	SmsResults []DeliveryResult `json:"smsResults"`
}
