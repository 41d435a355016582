package reactionmenus

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestTerminalEditStampsClosedFooter(t *testing.T) {
	message := &discordgo.Message{
		ID:        "msg1",
		ChannelID: "chan1",
		Embeds: []*discordgo.MessageEmbed{
			{Footer: &discordgo.MessageEmbedFooter{Text: "This menu will expire in 5 minutes"}},
		},
	}

	edit := terminalEdit(message, "chan1", "msg1", expiredMenuMsg, menuClosedFooter)

	if edit.Content == nil || *edit.Content != expiredMenuMsg {
		t.Fatalf("terminal edit lost its content")
	}
	if edit.ID != "msg1" || edit.Channel != "chan1" {
		t.Fatalf("terminal edit targets the wrong message: %s/%s", edit.Channel, edit.ID)
	}
	if len(edit.Embeds) != 1 {
		t.Fatalf("terminal edit dropped the embed")
	}
	if edit.Embeds[0].Footer == nil || edit.Embeds[0].Footer.Text != menuClosedFooter {
		t.Fatalf("terminal edit kept the countdown footer: %+v", edit.Embeds[0].Footer)
	}
}

func TestTerminalEditWithoutEmbed(t *testing.T) {
	edit := terminalEdit(nil, "chan1", "msg1", expiredMenuMsg, menuClosedFooter)
	if edit.Content == nil || *edit.Content != expiredMenuMsg {
		t.Fatalf("terminal edit lost its content")
	}
	if edit.Embeds != nil {
		t.Fatalf("terminal edit invented an embed for an unresolved message")
	}

	edit = terminalEdit(&discordgo.Message{ID: "msg1"}, "chan1", "msg1", expiredMenuMsg, menuClosedFooter)
	if edit.Embeds != nil {
		t.Fatalf("terminal edit invented an embed for a plain message")
	}
}
