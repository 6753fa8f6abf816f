package models

// EmergencyTrigger describes a rider who may have crashed and who should be told about it.
type EmergencyTrigger struct {
	RiderName   string    `json:"riderName" validate:"required"`
	RiderPhone  string    `json:"riderPhone" validate:"required"`
	BloodGroup  string    `json:"bloodGroup,omitempty"`
	Vehicle     string    `json:"vehicle,omitempty"`
	CrashGforce Reading   `json:"crashGforce,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64  `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
	Contacts    []Contact `json:"contacts" validate:"dive"`
}

// LocationShare asks for the rider's current position to be texted to the contacts.
type LocationShare struct {
	RiderName string    `json:"riderName" validate:"required"`
	Latitude  *float64  `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64  `json:"longitude" validate:"required,min=-180,max=180"`
	Contacts  []Contact `json:"contacts" validate:"dive"`
}
