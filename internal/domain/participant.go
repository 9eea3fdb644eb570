package domain

// Participant is the sender identity attached to decoded media frames.
type Participant struct {
	ID   UserID `json:"id"`
	Name string `json:"name"`
}
