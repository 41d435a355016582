package plugins

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/storytellerbot/storyteller/cache"
	"github.com/storytellerbot/storyteller/helpers"
	"github.com/storytellerbot/storyteller/reactionmenus"
	"github.com/storytellerbot/storyteller/scheduling"
)

// unreachableTransport fails every request before it leaves the process
type unreachableTransport struct{}

func (unreachableTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("gateway unreachable")
}

func TestPollCommandReleasesLockWhenSendFails(t *testing.T) {
	cache.SetLogger(logrus.New())
	scheduling.Tasks.Init(0)
	reactionmenus.Menus.Init()

	configPath := filepath.Join(t.TempDir(), "config.json")
	config := `{"bot": {"prefix": "!"}, "poll": {"default_timeout_minutes": 5}}`
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("writing test config failed: %v", err)
	}
	helpers.LoadConfig(configPath)

	session, err := discordgo.New("Bot test-token")
	if err != nil {
		t.Fatalf("discordgo.New() failed: %v", err)
	}
	session.Client.Transport = unreachableTransport{}
	if err := session.State.GuildAdd(&discordgo.Guild{ID: "guild1"}); err != nil {
		t.Fatalf("GuildAdd() failed: %v", err)
	}
	channel := &discordgo.Channel{ID: "chan1", GuildID: "guild1", Type: discordgo.ChannelTypeGuildText}
	if err := session.State.ChannelAdd(channel); err != nil {
		t.Fatalf("ChannelAdd() failed: %v", err)
	}
	cache.SetSession(session)

	msg := &discordgo.Message{
		ID:        "cmd1",
		ChannelID: "chan1",
		Author:    &discordgo.User{ID: "erin", Username: "erin"},
	}

	// the command dispatcher recovers panicked commands
	func() {
		defer func() { recover() }()
		(&Poll{}).Action("poll", "Favourite language?\n🇬 go\n🇷 rust", msg, session)
	}()

	// the placeholder message never went out, the lock has to come back
	if !helpers.UserPollLockAcquire("erin") {
		t.Fatalf("a failed poll creation kept the author's poll lock")
	}
	helpers.UserPollLockRelease("erin")
}
