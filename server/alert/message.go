package alert

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// Three GSM-7 segments. Anything outside plain ASCII switches the carrier to UCS-2
	// (70 chars per segment) and long multi-segment texts get rejected by some carriers.
	MAX_MESSAGE_LENGTH = 480

	NO_LOCATION     = "Location unavailable"
	TIME_FORMAT     = "02 Jan 2006 03:04 PM"
	MAP_LINK_FORMAT = "https://maps.google.com/maps?q=%s,%s"
)

// Per-field caps keep the full emergency text inside MAX_MESSAGE_LENGTH.
const (
	maxNameLength       = 40
	maxBloodGroupLength = 5
	maxVehicleLength    = 30
	maxReadingLength    = 8
	maxPhoneLength      = 16
)

type EmergencyDetails struct {
	RiderName  string
	RiderPhone string
	BloodGroup string
	Vehicle    string
	Gforce     string
	MapLink    string
	Time       time.Time
}

// MapLink returns a Google Maps link when both coordinates are known.
func MapLink(lat, lng *float64) string {
	if lat == nil || lng == nil {
		return NO_LOCATION
	}

	return fmt.Sprintf(MAP_LINK_FORMAT, formatCoordinate(*lat), formatCoordinate(*lng))
}

func EmergencyMessage(details EmergencyDetails) string {
	var b strings.Builder

	b.WriteString("EMERGENCY ALERT - HelmetGuard\n")
	fmt.Fprintf(&b, "%s may have had an accident!\n", field(details.RiderName, maxNameLength))
	b.WriteString("No response in 15 sec after impact.\n")
	fmt.Fprintf(&b, "Location: %s\n", plainText(details.MapLink))
	fmt.Fprintf(&b, "Impact: %sG\n", field(details.Gforce, maxReadingLength))
	fmt.Fprintf(&b, "Blood: %s\n", field(details.BloodGroup, maxBloodGroupLength))
	fmt.Fprintf(&b, "Vehicle: %s\n", field(details.Vehicle, maxVehicleLength))
	fmt.Fprintf(&b, "Phone: %s\n", field(details.RiderPhone, maxPhoneLength))
	fmt.Fprintf(&b, "Time: %s\n", details.Time.Format(TIME_FORMAT))
	b.WriteString("Call 108 for ambulance.")

	return truncate(b.String(), MAX_MESSAGE_LENGTH)
}

func LocationMessage(riderName, mapLink string) string {
	msg := fmt.Sprintf("%s's Location:\n%s\n- HelmetGuard Safety",
		field(riderName, maxNameLength), plainText(mapLink))

	return truncate(msg, MAX_MESSAGE_LENGTH)
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func formatCoordinate(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// field cleans a caller supplied value for the message body, "?" when blank.
func field(value string, maxLength int) string {
	value = strings.TrimSpace(plainText(strings.ReplaceAll(value, "\n", " ")))
	if value == "" {
		return "?"
	}
	return truncate(value, maxLength)
}

// plainText replaces every rune outside printable ASCII, so the text stays GSM-7 safe.
func plainText(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r == '\n':
			b.WriteRune(r)
		case r < 0x20 || r > 0x7e:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(value string, maxLength int) string {
	if utf8.RuneCountInString(value) <= maxLength {
		return value
	}
	return string([]rune(value)[:maxLength])
}
