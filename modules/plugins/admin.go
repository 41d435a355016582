package plugins

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/storytellerbot/storyteller/helpers"
	"github.com/storytellerbot/storyteller/reactionmenus"
)

// Admin bundles guild administration commands
type Admin struct{}

func (a *Admin) Commands() []string {
	return []string{
		"set-prefix",
		"ping",
		"set-story-channel",
		"del-story-channel",
		"del-reaction-menu",
	}
}

func (a *Admin) Init(session *discordgo.Session) {
}

func (a *Admin) Action(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	channel, err := helpers.GetChannel(msg.ChannelID)
	helpers.Relax(err)

	switch command {
	case "set-prefix":
		helpers.RequireAdmin(msg, func() {
			prefix := strings.TrimSpace(content)
			if prefix == "" {
				helpers.SendMessage(msg.ChannelID, "Please provide the command prefix you would like to set. E.g: `set-prefix $`")
				return
			}
			record := helpers.GuildRecordGet(channel.GuildID)
			record.Prefix = prefix
			helpers.Relax(helpers.GuildRecordSet(channel.GuildID, record))
			helpers.SendMessage(msg.ChannelID, "Command prefix set.")
		})
	case "ping":
		helpers.RequireAdmin(msg, func() {
			start := time.Now()
			pingMessages, err := helpers.SendMessage(msg.ChannelID, "Ping...")
			helpers.Relax(err)
			if len(pingMessages) == 0 {
				return
			}
			duration := time.Since(start)
			content := fmt.Sprintf("Pong! %.2fms", float64(duration)/float64(time.Millisecond))
			_, err = helpers.EditComplex(&discordgo.MessageEdit{
				ID:      pingMessages[0].ID,
				Channel: pingMessages[0].ChannelID,
				Content: &content,
			})
			helpers.RelaxLog(err)
		})
	case "set-story-channel":
		helpers.RequireAdmin(msg, func() {
			record := helpers.GuildRecordGet(channel.GuildID)
			if record.StoryChannelID == msg.ChannelID {
				helpers.SendMessage(msg.ChannelID, "This is already the story channel!")
				return
			}
			record.StoryChannelID = msg.ChannelID
			helpers.Relax(helpers.GuildRecordSet(channel.GuildID, record))
			helpers.SendMessage(msg.ChannelID, "Story channel set!")
		})
	case "del-story-channel":
		helpers.RequireAdmin(msg, func() {
			record := helpers.GuildRecordGet(channel.GuildID)
			if record.StoryChannelID == "" {
				helpers.SendMessage(msg.ChannelID, "This server does not have a story channel!")
				return
			}
			record.StoryChannelID = ""
			helpers.Relax(helpers.GuildRecordSet(channel.GuildID, record))
			helpers.SendMessage(msg.ChannelID, "Story channel removed!")
		})
	case "del-reaction-menu":
		helpers.RequireAdmin(msg, func() {
			messageID := strings.TrimSpace(content)
			err := reactionmenus.Menus.Delete(messageID)
			if err == reactionmenus.ErrMenuNotFound {
				helpers.SendMessage(msg.ChannelID, ":x: Unrecognised reaction menu!")
				return
			}
			helpers.RelaxLog(err)
		})
	}
}
