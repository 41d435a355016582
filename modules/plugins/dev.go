package plugins

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/storytellerbot/storyteller/cache"
	"github.com/storytellerbot/storyteller/helpers"
	"github.com/storytellerbot/storyteller/reactionmenus"
	"github.com/storytellerbot/storyteller/scheduling"
)

// Dev bundles maintenance commands restricted to bot developers
type Dev struct{}

func (d *Dev) Commands() []string {
	return []string{
		"say",
		"broadcast",
		"save",
		"bot-sleep",
	}
}

func (d *Dev) Init(session *discordgo.Session) {
}

func (d *Dev) Action(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	helpers.RequireBotDeveloper(msg, func() {
		switch command {
		case "say":
			if strings.TrimSpace(content) == "" {
				return
			}
			session.ChannelMessageDelete(msg.ChannelID, msg.ID)
			helpers.SendMessage(msg.ChannelID, content)
		case "broadcast":
			d.broadcast(content, msg, session)
		case "save":
			helpers.Relax(helpers.SaveMenusSnapshot(reactionmenus.Menus.SaveAll()))
			helpers.Relax(helpers.SaveTasksSnapshot(scheduling.Tasks.Snapshot()))
			helpers.SendMessage(msg.ChannelID, "💾 State saved!")
		case "bot-sleep":
			helpers.SendMessage(msg.ChannelID, "💤 Going to sleep, see you soon!")
			helpers.RelaxLog(helpers.SaveMenusSnapshot(reactionmenus.Menus.SaveAll()))
			helpers.RelaxLog(helpers.SaveTasksSnapshot(scheduling.Tasks.Snapshot()))
			cache.GetLogger().WithField("module", "dev").Info("Shutdown requested by " + msg.Author.Username)
			session.Close()
			// give discord a moment to deliver the goodbye
			time.Sleep(1 * time.Second)
			os.Exit(0)
		}
	})
}

// broadcast sends $content to the story channel of every guild that has one
func (d *Dev) broadcast(content string, msg *discordgo.Message, session *discordgo.Session) {
	if strings.TrimSpace(content) == "" {
		helpers.SendMessage(msg.ChannelID, ":x: Nothing to broadcast!")
		return
	}

	sent := 0
	skipped := make([]string, 0)
	for _, guild := range session.State.Guilds {
		record := helpers.GuildRecordGet(guild.ID)
		if record.StoryChannelID == "" {
			skipped = append(skipped, guild.Name)
			continue
		}

		_, err := helpers.SendMessage(record.StoryChannelID, "📣 "+content)
		if err != nil {
			helpers.RelaxLog(err)
			skipped = append(skipped, guild.Name)
			continue
		}
		sent++
	}

	report := "Broadcast delivered to " + strconv.Itoa(sent) + " server(s)."
	if len(skipped) > 0 {
		report += " Skipped: " + strings.Join(skipped, ", ")
	}
	helpers.SendMessage(msg.ChannelID, report)
}
