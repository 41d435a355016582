package models

// UserEntry stores the bot-specific state of one user account,
// independent of any guild
type UserEntry struct {
	ID string `json:"id"`
	// TimeOffset is the military timezone letter guessed for the user
	TimeOffset string `json:"timeOffset,omitempty"`
}
