package modules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/storytellerbot/storyteller/cache"
	"github.com/storytellerbot/storyteller/helpers"
	"github.com/storytellerbot/storyteller/modules/plugins"
)

var (
	pluginCache         map[string]*Plugin
	extendedPluginCache map[string]*ExtendedPlugin

	PluginList = []Plugin{
		&plugins.Poll{},
		&plugins.Admin{},
		&plugins.Misc{},
		&plugins.Dev{},
		&plugins.Reminders{},
	}

	PluginExtendedList = []ExtendedPlugin{
		&plugins.Story{},
	}
)

// Init warms the plugin caches and initializes all plugins
func Init(session *discordgo.Session) {
	pluginCache = make(map[string]*Plugin)
	extendedPluginCache = make(map[string]*ExtendedPlugin)

	logTemplate := "[PLUG] %s gets triggered by %s"
	for i := 0; i < len(PluginList); i++ {
		ref := &PluginList[i]

		commands := ""
		for _, cmd := range (*ref).Commands() {
			pluginCache[cmd] = ref
			commands += cmd + ", "
		}

		cache.GetLogger().WithField("module", "modules").Info(fmt.Sprintf(
			logTemplate,
			helpers.Typeof(*ref),
			strings.TrimSuffix(commands, ", "),
		))

		(*ref).Init(session)
	}

	logTemplate = "[EXTENDED-PLUG] %s gets triggered by %s"
	for i := 0; i < len(PluginExtendedList); i++ {
		ref := &PluginExtendedList[i]

		commands := ""
		for _, cmd := range (*ref).Commands() {
			extendedPluginCache[cmd] = ref
			commands += cmd + ", "
		}

		cache.GetLogger().WithField("module", "modules").Info(fmt.Sprintf(
			logTemplate,
			helpers.Typeof(*ref),
			strings.TrimSuffix(commands, ", "),
		))

		(*ref).Init(session)
	}

	cache.GetLogger().WithField("module", "modules").Info(
		"Initializer finished. Loaded " + strconv.Itoa(len(PluginList)) + " plugins and " +
			strconv.Itoa(len(PluginExtendedList)) + " extended plugins")
}

// CallBotPlugin iterates through the list of registered plugins
// and matches the command against plugin commands
// command - The command that triggered this execution
// content - The content without command
// msg     - The message object
func CallBotPlugin(command string, content string, msg *discordgo.Message) {
	if ref, ok := pluginCache[command]; ok {
		go func() {
			defer helpers.RecoverDiscord(msg)
			(*ref).Action(command, content, msg, cache.GetSession())
		}()
		return
	}

	if ref, ok := extendedPluginCache[command]; ok {
		go func() {
			defer helpers.RecoverDiscord(msg)
			(*ref).Action(command, content, msg, cache.GetSession())
		}()
	}
}

// CallExtendedPlugin forwards a message to all extended plugins
func CallExtendedPlugin(content string, msg *discordgo.Message) {
	defer helpers.Recover()

	for _, extendedPlugin := range PluginExtendedList {
		extendedPlugin.OnMessage(content, msg, cache.GetSession())
	}
}

// CallExtendedPluginOnReactionAdd forwards a reaction-add event to all extended plugins
func CallExtendedPluginOnReactionAdd(reaction *discordgo.MessageReactionAdd) {
	defer helpers.Recover()

	for _, extendedPlugin := range PluginExtendedList {
		extendedPlugin.OnReactionAdd(reaction, cache.GetSession())
	}
}

// CallExtendedPluginOnReactionRemove forwards a reaction-remove event to all extended plugins
func CallExtendedPluginOnReactionRemove(reaction *discordgo.MessageReactionRemove) {
	defer helpers.Recover()

	for _, extendedPlugin := range PluginExtendedList {
		extendedPlugin.OnReactionRemove(reaction, cache.GetSession())
	}
}
