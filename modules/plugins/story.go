package plugins

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/storytellerbot/storyteller/helpers"
	"github.com/storytellerbot/storyteller/metrics"
)

// Story collects the collaborative story of each guild: every message
// sent to the guild's story channel appends one contribution, the same
// author may not contribute twice in a row.
type Story struct{}

func (s *Story) Commands() []string {
	return []string{
		"story",
		"story-reset",
	}
}

func (s *Story) Init(session *discordgo.Session) {
}

func (s *Story) Action(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	channel, err := helpers.GetChannel(msg.ChannelID)
	helpers.Relax(err)

	switch command {
	case "story":
		record := helpers.GuildRecordGet(channel.GuildID)
		if strings.TrimSpace(record.Story) == "" {
			helpers.SendMessage(msg.ChannelID, "This server has no story yet!")
			return
		}
		helpers.SendMessage(msg.ChannelID, "📖 **The story so far:**\n"+record.Story)
	case "story-reset":
		helpers.RequireAdmin(msg, func() {
			record := helpers.GuildRecordGet(channel.GuildID)
			record.Story = ""
			record.LastAuthorID = ""
			helpers.Relax(helpers.GuildRecordSet(channel.GuildID, record))
			helpers.SendMessage(msg.ChannelID, "Story reset!")
		})
	}
}

// OnMessage appends story channel messages to the guild's story
func (s *Story) OnMessage(content string, msg *discordgo.Message, session *discordgo.Session) {
	channel, err := helpers.GetChannel(msg.ChannelID)
	if err != nil {
		return
	}

	record := helpers.GuildRecordGet(channel.GuildID)
	if record.StoryChannelID == "" || record.StoryChannelID != msg.ChannelID {
		return
	}

	contribution := strings.TrimSpace(content)
	if contribution == "" {
		return
	}

	// commands are not contributions
	if record.Prefix != "" && strings.HasPrefix(contribution, record.Prefix) {
		return
	}

	if record.LastAuthorID == msg.Author.ID {
		session.ChannelMessageDelete(msg.ChannelID, msg.ID)
		dmChannel, err := session.UserChannelCreate(msg.Author.ID)
		if err == nil {
			helpers.SendMessage(dmChannel.ID, "You cannot contribute twice in a row! Let someone else continue the story first.")
		}
		return
	}

	if record.Story == "" {
		record.Story = contribution
	} else {
		record.Story += " " + contribution
	}
	record.LastAuthorID = msg.Author.ID
	helpers.RelaxLog(helpers.GuildRecordSet(channel.GuildID, record))

	metrics.StoryContributions.Add(1)
}

func (s *Story) OnReactionAdd(reaction *discordgo.MessageReactionAdd, session *discordgo.Session) {
}

func (s *Story) OnReactionRemove(reaction *discordgo.MessageReactionRemove, session *discordgo.Session) {
}
