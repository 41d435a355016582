package helpers

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestParseEmoji(t *testing.T) {
	emoji, err := ParseEmoji("🔥")
	if err != nil || emoji.Unicode != "🔥" || emoji.IsCustom() {
		t.Fatalf("ParseEmoji() failed to parse a unicode emoji: %v %v", emoji, err)
	}

	emoji, err = ParseEmoji("1⃣")
	if err != nil || emoji.Unicode != "1⃣" {
		t.Fatalf("ParseEmoji() failed to parse a keycap emoji: %v %v", emoji, err)
	}

	emoji, err = ParseEmoji("<:blobthinking:317028940885524490>")
	if err != nil || emoji.ID != 317028940885524490 || emoji.Name != "blobthinking" {
		t.Fatalf("ParseEmoji() failed to parse a custom emote token: %v %v", emoji, err)
	}

	emoji, err = ParseEmoji("<a:party:99999>")
	if err != nil || emoji.ID != 99999 || emoji.Name != "party" {
		t.Fatalf("ParseEmoji() failed to parse an animated emote token: %v %v", emoji, err)
	}

	if _, err = ParseEmoji("not an emoji"); err != ErrUnrecognisedEmoji {
		t.Fatalf("ParseEmoji() accepted plain text")
	}

	if _, err = ParseEmoji(""); err != ErrUnrecognisedEmoji {
		t.Fatalf("ParseEmoji() accepted an empty string")
	}
}

func TestEmojiKeyStripsName(t *testing.T) {
	a := Emoji{ID: 42, Name: "partyblob"}
	b := Emoji{ID: 42, Name: "renamed"}

	if a.Key() != b.Key() {
		t.Fatalf("Key() kept display metadata in the identity")
	}
	if !a.Equals(b) {
		t.Fatalf("Equals() distinguished two emotes with the same id")
	}
	if a.Equals(Emoji{ID: 43}) {
		t.Fatalf("Equals() matched two different emote ids")
	}
	if (Emoji{Unicode: "🔥"}).Equals(Emoji{Unicode: "✅"}) {
		t.Fatalf("Equals() matched two different unicode emojis")
	}
}

func TestEmojiRepresentations(t *testing.T) {
	custom := Emoji{ID: 42, Name: "partyblob"}
	if custom.Sendable() != "partyblob:42" {
		t.Fatalf("Sendable() returned %q for a custom emote", custom.Sendable())
	}
	if custom.Token() != "<:partyblob:42>" {
		t.Fatalf("Token() returned %q for a custom emote", custom.Token())
	}

	unicode := Emoji{Unicode: "🔥"}
	if unicode.Sendable() != "🔥" || unicode.Token() != "🔥" {
		t.Fatalf("unicode emoji representations diverged from the raw emoji")
	}
}

func TestEmojiTokenRoundTrip(t *testing.T) {
	for _, token := range []string{"🔥", "<:partyblob:42>"} {
		emoji, err := ParseEmoji(token)
		if err != nil {
			t.Fatalf("ParseEmoji(%q) failed: %v", token, err)
		}
		if emoji.Token() != token {
			t.Fatalf("Token() round trip changed %q to %q", token, emoji.Token())
		}
	}
}

func TestEmojiFromAPI(t *testing.T) {
	emoji, err := EmojiFromAPI(&discordgo.Emoji{Name: "🔥"})
	if err != nil || emoji.Unicode != "🔥" {
		t.Fatalf("EmojiFromAPI() failed on a unicode emoji: %v %v", emoji, err)
	}

	emoji, err = EmojiFromAPI(&discordgo.Emoji{ID: "42", Name: "partyblob"})
	if err != nil || emoji.ID != 42 || emoji.Name != "partyblob" {
		t.Fatalf("EmojiFromAPI() failed on a custom emote: %v %v", emoji, err)
	}

	if _, err = EmojiFromAPI(nil); err != ErrUnrecognisedEmoji {
		t.Fatalf("EmojiFromAPI() accepted nil")
	}
	if _, err = EmojiFromAPI(&discordgo.Emoji{}); err != ErrUnrecognisedEmoji {
		t.Fatalf("EmojiFromAPI() accepted an empty emoji")
	}
}
