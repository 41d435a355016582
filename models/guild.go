package models

// GuildEntry stores the bot-specific state of one guild
type GuildEntry struct {
	ID             string `json:"id"`
	Prefix         string `json:"prefix,omitempty"`
	Story          string `json:"currentStory,omitempty"`
	LastAuthorID   string `json:"lastAuthorID,omitempty"`
	StoryChannelID string `json:"storyChannelID,omitempty"`
}
