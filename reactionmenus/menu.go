package reactionmenus

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/storytellerbot/storyteller/helpers"
	"github.com/storytellerbot/storyteller/models"
	"github.com/storytellerbot/storyteller/scheduling"
)

// error vars
var (
	ErrDuplicateOption = errors.New("reactionmenus: two options share the same emoji")
	ErrMenuNotFound    = errors.New("reactionmenus: no menu registered for this message")
)

// expiredMenuMsg is edited into menu messages closed without a tally
const expiredMenuMsg = "😴 This menu has now expired."

// menuClosedFooter replaces the countdown footer once the menu is closed
const menuClosedFooter = "This menu has ended."

// MenuOption is one selectable choice of a menu: a reaction emoji and a
// display name. Poll options carry no behaviour, they are inert data
// tallied at expiry.
type MenuOption struct {
	Emoji helpers.Emoji
	Name  string
}

// Menu is one interactive message bound to selectable reaction options.
// The menu kinds form a closed set, dispatched over Kind() when restoring
// persisted menus.
type Menu interface {
	Kind() string
	MessageID() string
	Saveable() bool
	Embed() *discordgo.MessageEmbed
	Snapshot() *models.MenuSnapshot

	// AllowsActor reports whether reaction events of $userID should be
	// dispatched to this menu, honouring the target user/role restriction
	AllowsActor(userID string) bool

	// ReactionAdded / ReactionRemoved are hook points called for filtered
	// platform events while the menu is live
	ReactionAdded(userID string, emoji helpers.Emoji)
	ReactionRemoved(userID string, emoji helpers.Emoji)

	// Delete closes the menu: cancel its bound task, edit the message to
	// a terminal state and deregister. Safe to call twice.
	Delete() error
}

// ReactionMenu carries the state shared by all menu kinds. A menu is
// either live (registered, accepting reaction events) or gone, there are
// no intermediate states.
type ReactionMenu struct {
	MsgID   string
	ChanID  string
	GuildID string

	Options     map[helpers.Emoji]*MenuOption
	OptionOrder []helpers.Emoji

	TitleTxt   string
	Desc       string
	Colour     int
	FooterTxt  string
	Img        string
	Thumb      string
	Icon       string
	AuthorName string

	TargetUserID string
	TargetRoleID string

	// Timeout is the menu's bound expiry task, at most one at a time
	Timeout *scheduling.TimedTask

	CanSave bool

	deleteLock sync.Mutex
	deleted    bool
}

// newReactionMenu builds the shared menu state, rejecting option sets
// where two options share an emoji
func newReactionMenu(channelID, messageID, guildID string, options []*MenuOption) (ReactionMenu, error) {
	menu := ReactionMenu{
		MsgID:       messageID,
		ChanID:      channelID,
		GuildID:     guildID,
		Options:     make(map[helpers.Emoji]*MenuOption, len(options)),
		OptionOrder: make([]helpers.Emoji, 0, len(options)),
	}

	for _, option := range options {
		key := option.Emoji.Key()
		if _, ok := menu.Options[key]; ok {
			return ReactionMenu{}, ErrDuplicateOption
		}
		menu.Options[key] = option
		menu.OptionOrder = append(menu.OptionOrder, key)
	}

	return menu, nil
}

func (m *ReactionMenu) MessageID() string {
	return m.MsgID
}

func (m *ReactionMenu) Saveable() bool {
	return m.CanSave
}

// AllowsActor checks the target user/role restriction for $userID
func (m *ReactionMenu) AllowsActor(userID string) bool {
	if m.TargetUserID != "" && m.TargetUserID != userID {
		return false
	}

	if m.TargetRoleID != "" {
		member, err := helpers.GetGuildMember(m.GuildID, userID)
		if err != nil {
			return false
		}
		for _, role := range member.Roles {
			if role == m.TargetRoleID {
				return true
			}
		}
		return false
	}

	return true
}

// ReactionAdded is a no-op hook point for menu kinds without live behaviour
func (m *ReactionMenu) ReactionAdded(userID string, emoji helpers.Emoji) {
}

// ReactionRemoved is a no-op hook point for menu kinds without live behaviour
func (m *ReactionMenu) ReactionRemoved(userID string, emoji helpers.Emoji) {
}

// baseEmbed renders the display metadata and option list shared by all
// menu kinds
func (m *ReactionMenu) baseEmbed() *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       m.TitleTxt,
		Description: m.Desc,
		Color:       m.Colour,
	}

	if m.AuthorName != "" {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name:    m.AuthorName,
			IconURL: m.Icon,
		}
	}
	if m.Img != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: m.Img}
	}
	if m.Thumb != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: m.Thumb}
	}

	footer := m.FooterTxt
	if footer == "" && m.Timeout != nil {
		footer = "This menu will expire in " + helpers.HumanizeDuration(time.Until(m.Timeout.ExpiryTime))
	}
	if footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	}

	for _, key := range m.OptionOrder {
		option := m.Options[key]
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   option.Emoji.Token() + " : " + option.Name,
			Value:  "​",
			Inline: false,
		})
	}

	return embed
}

// baseSnapshot serializes the shared menu state
func (m *ReactionMenu) baseSnapshot() *models.MenuSnapshot {
	snapshot := &models.MenuSnapshot{
		ChannelID:    m.ChanID,
		GuildID:      m.GuildID,
		Options:      make(map[string]string, len(m.Options)),
		TitleTxt:     m.TitleTxt,
		Desc:         m.Desc,
		Col:          m.Colour,
		FooterTxt:    m.FooterTxt,
		Img:          m.Img,
		Thumb:        m.Thumb,
		Icon:         m.Icon,
		AuthorName:   m.AuthorName,
		TargetUserID: m.TargetUserID,
		TargetRoleID: m.TargetRoleID,
	}

	for _, option := range m.Options {
		snapshot.Options[option.Emoji.Token()] = option.Name
	}

	if m.Timeout != nil {
		snapshot.Timeout = m.Timeout.ExpiryTime.Unix()
	}

	return snapshot
}

// close runs the shared deletion path once: cancel the bound task, edit
// the message to $content and deregister. Subsequent calls are no-ops.
func (m *ReactionMenu) close(content string) error {
	m.deleteLock.Lock()
	if m.deleted {
		m.deleteLock.Unlock()
		return nil
	}
	m.deleted = true
	m.deleteLock.Unlock()

	if m.Timeout != nil && !m.Timeout.Expired() {
		scheduling.RelaxScheduleLog(scheduling.Tasks.CancelTask(m.Timeout))
	}

	if content != "" {
		// without the live message the embed keeps its countdown footer
		liveMessage, _ := helpers.GetMessage(m.ChanID, m.MsgID)
		_, err := helpers.EditComplex(terminalEdit(liveMessage, m.ChanID, m.MsgID, content, menuClosedFooter))
		helpers.RelaxLog(err)
	}

	Menus.deregister(m.MsgID)
	return nil
}

// terminalEdit builds the edit closing a menu message: replace the content
// and stamp the closed footer on a still-present embed
func terminalEdit(message *discordgo.Message, channelID, messageID, content, footer string) *discordgo.MessageEdit {
	edit := &discordgo.MessageEdit{
		ID:      messageID,
		Channel: channelID,
		Content: &content,
	}

	if message != nil && len(message.Embeds) > 0 {
		embed := message.Embeds[0]
		embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}
		edit.Embeds = []*discordgo.MessageEmbed{embed}
	}

	return edit
}

// closed reports whether the menu reached its terminal state
func (m *ReactionMenu) closed() bool {
	m.deleteLock.Lock()
	defer m.deleteLock.Unlock()

	return m.deleted
}
