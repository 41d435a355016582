package helpers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

var (
	// covers plain emoji blocks plus keycap sequences, which start with an
	// ascii digit. https://en.wikipedia.org/wiki/Emoji#Unicode_blocks
	unicodeEmojiRegex = regexp.MustCompile(`^(?:[0-9#*][\x{FE00}-\x{FE0F}]?\x{20E3}|[\x{00A0}-\x{1FAFF}][\x{FE00}-\x{FE0F}\x{20E3}\x{200D}\x{00A0}-\x{1FAFF}]*)$`)
	discordEmojiRegex = regexp.MustCompile(`^<(a)?:([^<>:]+):([0-9]+)>$`)
)

// ErrUnrecognisedEmoji is returned when a text or API emoji can not be
// resolved to either a unicode emoji or a custom server emote
var ErrUnrecognisedEmoji = errors.New("helpers: unrecognised emoji")

// Emoji identifies either a built-in unicode emoji or a custom server
// emote by its numeric ID. Name is display metadata for custom emotes and
// is not part of the identity, use Key() when comparing or indexing.
type Emoji struct {
	Unicode string
	ID      uint64
	Name    string
}

// IsCustom returns true for custom server emotes
func (e Emoji) IsCustom() bool {
	return e.ID != 0
}

// Key strips display metadata, leaving only the identity. Two emojis refer
// to the same reaction exactly when their keys are equal.
func (e Emoji) Key() Emoji {
	if e.ID != 0 {
		return Emoji{ID: e.ID}
	}
	return Emoji{Unicode: e.Unicode}
}

// Equals compares two emojis by identity
func (e Emoji) Equals(other Emoji) bool {
	return e.Key() == other.Key()
}

// Sendable returns the representation the discord API expects for
// reaction endpoints: "name:id" for custom emotes, the raw emoji otherwise
func (e Emoji) Sendable() string {
	if e.IsCustom() {
		return e.Name + ":" + strconv.FormatUint(e.ID, 10)
	}
	return e.Unicode
}

// Token returns the textual form used in persisted snapshots and in
// message content: "<:name:id>" for custom emotes, the raw emoji otherwise
func (e Emoji) Token() string {
	if e.IsCustom() {
		return "<:" + e.Name + ":" + strconv.FormatUint(e.ID, 10) + ">"
	}
	return e.Unicode
}

func (e Emoji) String() string {
	return e.Token()
}

// ParseEmoji resolves $text to an Emoji. Accepts a raw unicode emoji or a
// discord custom emote token ("<:name:id>" or "<a:name:id>"), anything
// else yields ErrUnrecognisedEmoji.
func ParseEmoji(text string) (Emoji, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Emoji{}, ErrUnrecognisedEmoji
	}

	if parts := discordEmojiRegex.FindStringSubmatch(text); parts != nil {
		id, err := strconv.ParseUint(parts[3], 10, 64)
		if err != nil {
			return Emoji{}, ErrUnrecognisedEmoji
		}
		return Emoji{ID: id, Name: parts[2]}, nil
	}

	if unicodeEmojiRegex.MatchString(text) {
		return Emoji{Unicode: text}, nil
	}

	return Emoji{}, ErrUnrecognisedEmoji
}

// EmojiFromAPI resolves an emoji attached to a gateway event or fetched
// message to an Emoji value
func EmojiFromAPI(apiEmoji *discordgo.Emoji) (Emoji, error) {
	if apiEmoji == nil || (apiEmoji.ID == "" && apiEmoji.Name == "") {
		return Emoji{}, ErrUnrecognisedEmoji
	}

	if apiEmoji.ID != "" {
		id, err := strconv.ParseUint(apiEmoji.ID, 10, 64)
		if err != nil {
			return Emoji{}, ErrUnrecognisedEmoji
		}
		return Emoji{ID: id, Name: apiEmoji.Name}, nil
	}

	return Emoji{Unicode: apiEmoji.Name}, nil
}
