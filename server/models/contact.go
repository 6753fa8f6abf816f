package models

// Contact is a person who receives alerts on the rider's behalf.
// Duplicate contacts are not collapsed, each entry gets its own message.
type Contact struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Relation string `json:"relation"`
}
