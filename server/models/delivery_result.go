package models

const (
	SENT_DELIVERY   = "sent"
	FAILED_DELIVERY = "failed"
)

// DeliveryResult is the outcome of one message to one contact.
type DeliveryResult struct {
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Status  string `json:"status"`
	Sid     string `json:"sid,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (result DeliveryResult) Sent() bool {
	return result.Status == SENT_DELIVERY
}

// CountSent returns how many results in the list were delivered to the carrier.
func CountSent(results []DeliveryResult) int {
	count := 0
	for _, result := range results {
		if result.Sent() {
			count++
		}
	}
	return count
}
