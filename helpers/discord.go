package helpers

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/storytellerbot/storyteller/cache"
)

// IsBotDeveloper checks if $id is listed as developer in the config
func IsBotDeveloper(id string) bool {
	devs, err := GetConfig().Path("bot.developers").Children()
	if err != nil {
		return false
	}
	for _, dev := range devs {
		if s, ok := dev.Data().(string); ok && s == id {
			return true
		}
	}

	return false
}

func IsAdmin(msg *discordgo.Message) bool {
	channel, e := cache.GetSession().Channel(msg.ChannelID)
	if e != nil {
		return false
	}

	guild, e := cache.GetSession().Guild(channel.GuildID)
	if e != nil {
		return false
	}

	if msg.Author.ID == guild.OwnerID || IsBotDeveloper(msg.Author.ID) {
		return true
	}

	guildMember, e := cache.GetSession().GuildMember(guild.ID, msg.Author.ID)
	if e != nil {
		return false
	}
	// Check if role may manage server
	for _, role := range guild.Roles {
		for _, userRole := range guildMember.Roles {
			if userRole == role.ID && role.Permissions&discordgo.PermissionManageServer == discordgo.PermissionManageServer {
				return true
			}
		}
	}

	return false
}

// RequireAdmin only calls $cb if the author is an admin or has MANAGE_SERVER permission
func RequireAdmin(msg *discordgo.Message, cb Callback) {
	if !IsAdmin(msg) {
		SendMessage(msg.ChannelID, ":x: You need to be an admin to use this command!")
		return
	}

	cb()
}

// RequireBotDeveloper only calls $cb if the author is a bot developer
func RequireBotDeveloper(msg *discordgo.Message, cb Callback) {
	if !IsBotDeveloper(msg.Author.ID) {
		SendMessage(msg.ChannelID, ":x: This command is only available to bot developers!")
		return
	}

	cb()
}

// SendMessage sends $content to $channelID, splitting at discord's length limit
func SendMessage(channelID, content string) (messages []*discordgo.Message, err error) {
	var message *discordgo.Message
	for _, part := range splitMessage(content, 2000) {
		message, err = cache.GetSession().ChannelMessageSend(channelID, part)
		if err != nil {
			return messages, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// SendEmbed sends an embed message to $channelID
func SendEmbed(channelID string, embed *discordgo.MessageEmbed) (messages []*discordgo.Message, err error) {
	message, err := cache.GetSession().ChannelMessageSendEmbed(channelID, embed)
	if err != nil {
		return nil, err
	}
	return []*discordgo.Message{message}, nil
}

// EditEmbed replaces the embed of message $messageID in $channelID
func EditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed) (message *discordgo.Message, err error) {
	return cache.GetSession().ChannelMessageEditEmbed(channelID, messageID, embed)
}

// EditComplex edits content and embed of a message at once
func EditComplex(edit *discordgo.MessageEdit) (message *discordgo.Message, err error) {
	return cache.GetSession().ChannelMessageEditComplex(edit)
}

// GetChannel resolves a channel, preferring the state cache
func GetChannel(channelID string) (*discordgo.Channel, error) {
	channel, err := cache.GetSession().State.Channel(channelID)
	if err == nil {
		return channel, nil
	}
	return cache.GetSession().Channel(channelID)
}

// GetGuild resolves a guild, preferring the state cache
func GetGuild(guildID string) (*discordgo.Guild, error) {
	guild, err := cache.GetSession().State.Guild(guildID)
	if err == nil {
		return guild, nil
	}
	return cache.GetSession().Guild(guildID)
}

// GetGuildMember resolves a guild member, preferring the state cache
func GetGuildMember(guildID, userID string) (*discordgo.Member, error) {
	member, err := cache.GetSession().State.Member(guildID, userID)
	if err == nil {
		return member, nil
	}
	return cache.GetSession().GuildMember(guildID, userID)
}

// GetMessage fetches a live message, bypassing the state cache
func GetMessage(channelID, messageID string) (*discordgo.Message, error) {
	return cache.GetSession().ChannelMessage(channelID, messageID)
}

func splitMessage(content string, limit int) []string {
	if len(content) <= limit {
		return []string{content}
	}

	var parts []string
	for len(content) > limit {
		cut := strings.LastIndex(content[:limit], "\n")
		if cut <= 0 {
			cut = limit
		}
		parts = append(parts, content[:cut])
		content = content[cut:]
	}
	if content != "" {
		parts = append(parts, content)
	}
	return parts
}
