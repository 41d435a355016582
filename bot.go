package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/storytellerbot/storyteller/cache"
	"github.com/storytellerbot/storyteller/helpers"
	"github.com/storytellerbot/storyteller/metrics"
	"github.com/storytellerbot/storyteller/modules"
	"github.com/storytellerbot/storyteller/ratelimits"
	"github.com/storytellerbot/storyteller/reactionmenus"
	"github.com/storytellerbot/storyteller/scheduling"
)

// BotOnReady gets called after the gateway connected
func BotOnReady(session *discordgo.Session, event *discordgo.Ready) {
	log := cache.GetLogger()

	log.WithField("module", "bot").Info("Connected to discord!")

	// Cache the session
	cache.SetSession(session)

	// Allocate the scheduler and menu registry before plugins register
	// their expiry actions
	lateness := scheduling.DefaultLateness
	if secs, ok := helpers.GetConfig().Path("scheduler.lateness_seconds").Data().(float64); ok && secs > 0 {
		lateness = time.Duration(secs) * time.Second
	}
	scheduling.Tasks.Init(lateness)
	reactionmenus.Menus.Init()

	// Load and init all modules
	modules.Init(session)

	// Restore persisted state. Menus go first so menu expiry tasks find
	// their menu registered when an elapsed deadline fires during restore.
	menuSnapshot, err := helpers.LoadMenusSnapshot()
	if err != nil {
		log.WithField("module", "bot").Error("failed to load menu snapshot: " + err.Error())
	} else {
		reactionmenus.Menus.LoadAll(menuSnapshot, helpers.GetMessage)
	}

	taskSnapshot, err := helpers.LoadTasksSnapshot()
	if err != nil {
		log.WithField("module", "bot").Error("failed to load task snapshot: " + err.Error())
	} else {
		scheduling.Tasks.Restore(taskSnapshot)
	}

	// Run the scheduler tick loop
	go scheduling.Tasks.Run(make(chan struct{}))

	// Run the state autosave loop
	go autosaveInterval()

	// Run ratelimiter
	ratelimits.Container.Init()

	go func() {
		time.Sleep(3 * time.Second)

		err := session.UpdateGameStatus(0, fmt.Sprintf("on %d servers | tell me a story", len(session.State.Guilds)))
		if err != nil {
			helpers.RelaxLog(err)
		}
	}()
}

// BotOnMessageCreate gets called after a new message was sent
// This will be called after *every* message on *every* server so it should die as soon as possible
// or spawn costly work inside of coroutines.
func BotOnMessageCreate(session *discordgo.Session, message *discordgo.MessageCreate) {
	// Ignore other bots and @everyone/@here
	if message.Author.Bot || message.MentionEveryone {
		return
	}

	metrics.MessagesReceived.Add(1)

	// Get the channel
	// Ignore the event if we cannot resolve the channel
	channel, err := helpers.GetChannel(message.ChannelID)
	if err != nil {
		return
	}
	if channel.Type == discordgo.ChannelTypeDM {
		return
	}

	modules.CallExtendedPlugin(
		message.Content,
		message.Message,
	)

	prefix := helpers.GuildRecordGet(channel.GuildID).Prefix
	if prefix == "" {
		return
	}

	// Check if the message is prefixed for us
	// If not exit
	if !strings.HasPrefix(message.Content, prefix) {
		return
	}

	// Check if the user is allowed to request commands
	if !ratelimits.Container.HasKeys(message.Author.ID) && !helpers.IsBotDeveloper(message.Author.ID) {
		helpers.SendMessage(message.ChannelID, fmt.Sprintf(
			"<@%s> Slow down, you are using commands too fast!", message.Author.ID))

		ratelimits.Container.Set(message.Author.ID, -1)
		return
	}

	// Split the message into parts
	parts := strings.Fields(message.Content)

	// Save a sanitized version of the command (no prefix)
	cmd := strings.Replace(parts[0], prefix, "", 1)
	if cmd == "" {
		return
	}

	// Separate arguments from the command
	content := strings.TrimSpace(strings.Replace(message.Content, prefix+cmd, "", 1))

	// Consume a key for this command
	ratelimits.Container.Drain(1, message.Author.ID)

	metrics.CommandsExecuted.Add(1)

	cache.GetLogger().WithField("module", "bot").Debug(fmt.Sprintf("%s (#%s): %s",
		message.Author.Username, message.Author.ID, message.Content))

	// Check if a module matches said command
	modules.CallBotPlugin(cmd, content, message.Message)
}

// BotOnReactionAdd gets called after a reaction is added
// This will be called after *every* reaction added on *every* server so it
// should die as soon as possible or spawn costly work inside of coroutines.
func BotOnReactionAdd(session *discordgo.Session, reaction *discordgo.MessageReactionAdd) {
	reactionmenus.Menus.HandleReactionAdd(reaction)

	modules.CallExtendedPluginOnReactionAdd(reaction)
}

// BotOnReactionRemove gets called after a reaction is removed
func BotOnReactionRemove(session *discordgo.Session, reaction *discordgo.MessageReactionRemove) {
	reactionmenus.Menus.HandleReactionRemove(reaction)

	modules.CallExtendedPluginOnReactionRemove(reaction)
}

// autosaveInterval periodically snapshots the menu registry and scheduler
// so a crash loses at most one interval of state
func autosaveInterval() {
	interval := 60 * time.Second
	if secs, ok := helpers.GetConfig().Path("bot.autosave_seconds").Data().(float64); ok && secs > 0 {
		interval = time.Duration(secs) * time.Second
	}

	for {
		time.Sleep(interval)

		helpers.RelaxLog(helpers.SaveMenusSnapshot(reactionmenus.Menus.SaveAll()))
		helpers.RelaxLog(helpers.SaveTasksSnapshot(scheduling.Tasks.Snapshot()))
	}
}
