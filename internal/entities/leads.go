package entities

import "time"

// Lead is a marketing contact capture row, logically keyed by Phone.
type Lead struct {
	Phone     string    `json:"phone"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsOpen reports whether the lead still waits for its profile fields.
func (l Lead) IsOpen() bool {
	return l.Name == "" && l.Email == ""
}

// Subscriber is a newsletter subscription, keyed by Email.
type Subscriber struct {
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}
