package models

// MenuSnapshot is the persisted form of one reaction menu. Options maps
// the textual emoji token (raw unicode, or a custom emote token embedding
// its numeric id) to the option's display name.
type MenuSnapshot struct {
	Kind      string `json:"kind"`
	ChannelID string `json:"channelId"`
	GuildID   string `json:"guildId,omitempty"`

	Options map[string]string `json:"options"`

	// Timeout is the menu's expiry as unix epoch seconds, 0 when the menu
	// does not expire on its own
	Timeout int64 `json:"timeout,omitempty"`

	MultipleChoice bool   `json:"multipleChoice,omitempty"`
	OwningUserID   string `json:"owningUserId,omitempty"`

	TitleTxt   string `json:"titleTxt,omitempty"`
	Desc       string `json:"desc,omitempty"`
	Col        int    `json:"col,omitempty"`
	FooterTxt  string `json:"footerTxt,omitempty"`
	Img        string `json:"img,omitempty"`
	Thumb      string `json:"thumb,omitempty"`
	Icon       string `json:"icon,omitempty"`
	AuthorName string `json:"authorName,omitempty"`

	TargetUserID string `json:"targetMember,omitempty"`
	TargetRoleID string `json:"targetRole,omitempty"`
}
