package plugins

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/storytellerbot/storyteller/cache"
	"github.com/storytellerbot/storyteller/emojis"
	"github.com/storytellerbot/storyteller/helpers"
	"github.com/storytellerbot/storyteller/scheduling"
)

// RemindAction is the scheduler action kind for due reminders
const RemindAction = "remind"

type Reminders struct {
	parser *when.Parser
}

// reminderArg is the serialized argument of a remind task
type reminderArg struct {
	UserID    string `json:"userId"`
	ChannelID string `json:"channelId"`
	Message   string `json:"message"`
}

func (r *Reminders) Commands() []string {
	return []string{
		"remind",
		"remindme",
		"rm",
	}
}

func (r *Reminders) Init(session *discordgo.Session) {
	r.parser = when.New(nil)
	r.parser.Add(en.All...)
	r.parser.Add(common.All...)

	scheduling.Tasks.RegisterAction(RemindAction, deliverReminder)
}

func (r *Reminders) Action(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	session.ChannelTyping(msg.ChannelID)

	if len(strings.Fields(content)) < 2 {
		helpers.SendMessage(msg.ChannelID, ":x: Please check if the format is correct")
		return
	}

	result, err := r.parser.Parse(content, time.Now())
	helpers.Relax(err)
	if result == nil || !result.Time.After(time.Now()) {
		helpers.SendMessage(msg.ChannelID, ":x: Please check if the format is correct")
		return
	}

	arg, err := json.Marshal(reminderArg{
		UserID:    msg.Author.ID,
		ChannelID: msg.ChannelID,
		Message:   strings.TrimSpace(strings.Replace(content, result.Text, "", 1)),
	})
	helpers.Relax(err)

	task := scheduling.NewTimedTask(
		scheduling.Action{Kind: RemindAction, Arg: string(arg)},
		result.Time.UTC(),
	)
	helpers.Relax(scheduling.Tasks.ScheduleTask(task))

	helpers.SendMessage(msg.ChannelID, "Ok, I'll remind you at "+
		result.Time.UTC().Format("15:04 MST, Mon Jan 2")+"!")
}

// deliverReminder DMs the reminder to its owner once the task fires
func deliverReminder(arg string) {
	var reminder reminderArg
	if err := json.Unmarshal([]byte(arg), &reminder); err != nil {
		cache.GetLogger().WithField("module", "reminders").Error("malformed reminder arg: " + err.Error())
		return
	}

	session := cache.GetSession()
	dmChannel, err := session.UserChannelCreate(reminder.UserID)
	if err != nil {
		helpers.RelaxLog(err)
		return
	}

	content := emojis.Alarm + " You wanted me to remind you about this:\n```" + reminder.Message + "```"
	if reminder.Message == "" {
		content = emojis.Alarm + " You wanted me to remind you about something, but you didn't tell me about what."
	}

	helpers.SendMessage(dmChannel.ID, content)
}
