package plugins

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/storytellerbot/storyteller/helpers"
	"github.com/storytellerbot/storyteller/metrics"
	"github.com/storytellerbot/storyteller/version"
)

// Misc bundles small utility commands
type Misc struct{}

func (m *Misc) Commands() []string {
	return []string{
		"source",
		"prompt",
		"timezone",
	}
}

func (m *Misc) Init(session *discordgo.Session) {
}

var (
	promptLocations = []string{"Sydney", "York", "Pisa", "Mumbai", "Santiago", "the street", "a gloomy alley",
		"a forest", "the Austrian alps", "Indonesia", "Luxembourg", "Palestine", "the basement", "the kitchen",
		"the classroom", "the fridge", "the bank", "a paintball range", "a swamp", "a gallery", "a museum",
		"a night club", "a bar", "the gym", "a lecture hall", "the pantry of a 4-star restaurant"}

	promptActions = []string{"taking selfies", "singing", "drawing", "writing", "stealing", "flexing",
		"sitting", "walking", "strolling", "sleeping", "swimming", "gaming", "coding", "on their phone",
		"studying", "listening to a podcast", "on holiday for the weekend", "fishing"}

	promptPeople = []string{"Nicolas Cage", "Steve Carell", "Natalie Portman", "Charles Darwin",
		"David Beckham", "Steven Spielberg", "Karl Marx", "Katy Perry", "Beyoncé", "Jim Carrey",
		"Taylor Swift", "Maya Angelou", "Stephen Hawking", "LeBron James", "Edgar Allan Poe",
		"William Wallace", "Frank Zappa", "Clint Eastwood", "Stuart Little", "Elmer Fudd",
		"Foghorn Leghorn", "Arthur", "Shaggy", "Wile E. Coyote", "Aladdin"}

	// chance in percent of using a server member as the prompt subject
	promptMemberChance = 70
)

func (m *Misc) Action(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	switch command {
	case "source":
		launchTime := time.Unix(metrics.Uptime.Value(), 0)
		embed := &discordgo.MessageEmbed{
			Author: &discordgo.MessageEmbedAuthor{Name: "Source Code"},
			Color:  0x9B59B6,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Uptime", Value: helpers.HumanizeDuration(time.Since(launchTime)), Inline: true},
				{Name: "Version", Value: version.BOT_VERSION, Inline: true},
				{Name: "API", Value: "discordgo " + discordgo.VERSION, Inline: true},
			},
			Footer: &discordgo.MessageEmbedFooter{Text: "Bot Source"},
		}
		_, err := helpers.SendEmbed(msg.ChannelID, embed)
		helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
	case "prompt":
		subject := promptPeople[rand.Intn(len(promptPeople))]
		channel, err := helpers.GetChannel(msg.ChannelID)
		if err == nil && rand.Intn(100) < promptMemberChance {
			guild, err := helpers.GetGuild(channel.GuildID)
			if err == nil && len(guild.Members) > 0 {
				subject = guild.Members[rand.Intn(len(guild.Members))].User.Username
			}
		}

		prompt := fmt.Sprintf("✍ **Writing prompt:** %s %s in %s.",
			subject,
			promptActions[rand.Intn(len(promptActions))],
			promptLocations[rand.Intn(len(promptLocations))])
		helpers.SendMessage(msg.ChannelID, prompt)
	case "timezone":
		clock := strings.TrimSpace(strings.ToLower(content))
		if clock == "" {
			helpers.SendMessage(msg.ChannelID, "Please tell me your current local time, e.g `timezone 14:30` or `timezone 2:30 pm`")
			return
		}

		hours, minutes, err := helpers.ParseClock(clock)
		if err != nil {
			helpers.SendMessage(msg.ChannelID, ":x: That doesn't look like a time! Try `HH:MM`, optionally followed by am/pm.")
			return
		}

		offset := helpers.GuessUTCOffset(time.Now().UTC(), hours, minutes)
		letter := helpers.OffsetLetter(offset)

		record := helpers.UserRecordGet(msg.Author.ID)
		record.TimeOffset = letter
		helpers.RelaxLog(helpers.UserRecordSet(msg.Author.ID, record))

		sign := "+"
		if offset < 0 {
			sign = "-"
			offset = -offset
		}
		helpers.SendMessage(msg.ChannelID, fmt.Sprintf(
			"I think you are in timezone **%s** (UTC%s%02d:%02d)! I'll remember that.",
			letter, sign, int(offset/time.Hour), int(offset%time.Hour/time.Minute)))
	}
}
