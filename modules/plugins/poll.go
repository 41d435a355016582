package plugins

import (
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/storytellerbot/storyteller/emojis"
	"github.com/storytellerbot/storyteller/helpers"
	"github.com/storytellerbot/storyteller/metrics"
	"github.com/storytellerbot/storyteller/reactionmenus"
	"github.com/storytellerbot/storyteller/scheduling"
)

type Poll struct{}

func (p *Poll) Commands() []string {
	return []string{
		"poll",
	}
}

func (p *Poll) Init(session *discordgo.Session) {
	scheduling.Tasks.RegisterAction(reactionmenus.PollExpiryAction, reactionmenus.ExpirePollResults)
}

var timeUnitNames = []string{"days", "hours", "minutes", "seconds"}

// Action creates a reaction poll:
// [p]poll <subject>
// <emoji> <option name>
// ...
// [target=@role/@user] [multiplechoice=yes/no] [days=/hours=/minutes=/seconds=]
func (p *Poll) Action(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	channel, err := helpers.GetChannel(msg.ChannelID)
	helpers.Relax(err)
	guild, err := helpers.GetGuild(channel.GuildID)
	helpers.Relax(err)

	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		helpers.SendMessage(msg.ChannelID,
			":x: Invalid arguments! Please provide your poll subject, followed by a new line, then a new line-separated series of poll options.")
		return
	}
	pollSubject := strings.TrimSpace(lines[0])

	var options []*reactionmenus.MenuOption
	var kwargLines []string
	optionPos := 0
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if helpers.IsKeyValueArg(line) {
			kwargLines = append(kwargLines, line)
			continue
		}

		optionPos++
		fields := strings.Fields(line)
		if len(fields) < 2 {
			helpers.SendMessage(msg.ChannelID,
				":x: Invalid poll option! Each option must be an emoji, followed by a space, followed by the option name.")
			return
		}

		emojiText := fields[0]
		if numberEmoji := emojis.FromNumber(emojiText); numberEmoji != "" {
			emojiText = numberEmoji
		}
		emoji, err := helpers.ParseEmoji(emojiText)
		if err != nil {
			helpers.SendMessage(msg.ChannelID,
				":x: I don't know your "+humanOrdinal(optionPos)+" emoji!\nYou can only use built in emojis, or custom emojis that are in this server.")
			return
		}
		if emoji.IsCustom() && !guildHasEmoji(guild, emoji) {
			helpers.SendMessage(msg.ChannelID,
				":x: I don't know your "+humanOrdinal(optionPos)+" emoji!\nYou can only use built in emojis, or custom emojis that are in this server.")
			return
		}

		for _, existing := range options {
			if existing.Emoji.Equals(emoji) {
				helpers.SendMessage(msg.ChannelID, ":x: Cannot use the same emoji for two options!")
				return
			}
		}

		options = append(options, &reactionmenus.MenuOption{
			Emoji: emoji,
			Name:  strings.Join(fields[1:], " "),
		})
	}

	if len(options) == 0 {
		helpers.SendMessage(msg.ChannelID, ":x: No options given!")
		return
	}

	kwargs := helpers.ParseKeyValueString(strings.Join(kwargLines, " "))

	config := reactionmenus.PollConfig{
		MultipleChoice: true,
		OwningUserID:   msg.Author.ID,
		Desc:           pollSubject,
		AuthorName:     msg.Author.Username + " started a poll!",
		Icon:           msg.Author.AvatarURL("64"),
	}

	if target, ok := kwargs["target"]; ok {
		switch {
		case helpers.IsRoleMention(target):
			roleID := helpers.MentionID(target)
			if !guildHasRole(guild, roleID) {
				helpers.SendMessage(msg.ChannelID, ":x: Unknown target role!")
				return
			}
			config.TargetRoleID = roleID
		case helpers.IsMention(target):
			userID := helpers.MentionID(target)
			if _, err := helpers.GetGuildMember(guild.ID, userID); err != nil {
				helpers.SendMessage(msg.ChannelID, ":x: Unknown target user!")
				return
			}
			config.TargetUserID = userID
		default:
			helpers.SendMessage(msg.ChannelID, ":x: Invalid target role/user!")
			return
		}
	}

	if choice, ok := kwargs["multiplechoice"]; ok {
		switch strings.ToLower(choice) {
		case "off", "no", "false", "single", "one":
			config.MultipleChoice = false
		case "on", "yes", "true", "multiple", "many":
			config.MultipleChoice = true
		default:
			helpers.SendMessage(msg.ChannelID,
				"Invalid `multiplechoice` argument '"+choice+"'! Please use either `multiplechoice=yes` or `multiplechoice=no`")
			return
		}
	}

	units := map[string]int{}
	for _, unitName := range timeUnitNames {
		value, ok := kwargs[unitName]
		if !ok {
			continue
		}
		if strings.ToLower(value) == "off" {
			units[unitName] = helpers.TimeUnitOff
			continue
		}
		number, err := strconv.Atoi(value)
		if err != nil || number < 1 {
			helpers.SendMessage(msg.ChannelID, ":x: Invalid number of "+unitName+" before timeout!")
			return
		}
		units[unitName] = number
	}

	timeout := defaultPollTimeout()
	if len(units) > 0 {
		timeout, err = helpers.DurationFromUnits(
			units["days"], units["hours"], units["minutes"], units["seconds"])
		if err == helpers.ErrNoTimeUnits {
			helpers.SendMessage(msg.ChannelID, ":x: Poll timeouts cannot be disabled!")
			return
		}
		helpers.Relax(err)
	}

	// one poll per user, process-wide
	if !helpers.UserPollLockAcquire(msg.Author.ID) {
		helpers.SendMessage(msg.ChannelID, ":x: You can only make one poll at a time!")
		return
	}

	// until the menu is live the lock is ours to give back, on any exit
	lockHeld := true
	defer func() {
		if lockHeld {
			helpers.UserPollLockRelease(msg.Author.ID)
		}
	}()

	pollMessages, err := helpers.SendMessage(msg.ChannelID, "​")
	if err != nil || len(pollMessages) == 0 {
		helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
		return
	}
	pollMessage := pollMessages[0]

	task := scheduling.NewTimedTaskIn(
		scheduling.Action{Kind: reactionmenus.PollExpiryAction, Arg: pollMessage.ID},
		timeout,
	)

	menu, err := reactionmenus.NewPollMenu(
		pollMessage.ChannelID, pollMessage.ID, guild.ID, options, task, config)
	// option set was validated above, anything here is unexpected
	helpers.Relax(err)

	reactionmenus.Menus.Put(menu)
	helpers.Relax(scheduling.Tasks.ScheduleTask(task))

	// the expiry callback owns the release from here on
	lockHeld = false

	_, err = helpers.EditEmbed(pollMessage.ChannelID, pollMessage.ID, menu.Embed())
	helpers.RelaxLog(err)

	for _, option := range options {
		err = session.MessageReactionAdd(pollMessage.ChannelID, pollMessage.ID, option.Emoji.Sendable())
		helpers.RelaxLog(err)
	}

	metrics.PollsCreated.Add(1)
}

func defaultPollTimeout() time.Duration {
	if minutes, ok := helpers.GetConfig().Path("poll.default_timeout_minutes").Data().(float64); ok && minutes > 0 {
		return time.Duration(minutes) * time.Minute
	}
	return 5 * time.Minute
}

func guildHasEmoji(guild *discordgo.Guild, emoji helpers.Emoji) bool {
	for _, guildEmoji := range guild.Emojis {
		if guildEmoji.ID == strconv.FormatUint(emoji.ID, 10) {
			return true
		}
	}
	return false
}

func guildHasRole(guild *discordgo.Guild, roleID string) bool {
	for _, role := range guild.Roles {
		if role.ID == roleID {
			return true
		}
	}
	return false
}

func humanOrdinal(number int) string {
	switch number % 10 {
	case 1:
		if number%100 != 11 {
			return strconv.Itoa(number) + "st"
		}
	case 2:
		if number%100 != 12 {
			return strconv.Itoa(number) + "nd"
		}
	case 3:
		if number%100 != 13 {
			return strconv.Itoa(number) + "rd"
		}
	}
	return strconv.Itoa(number) + "th"
}
