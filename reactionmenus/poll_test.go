package reactionmenus

import (
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/storytellerbot/storyteller/cache"
	"github.com/storytellerbot/storyteller/helpers"
	"github.com/storytellerbot/storyteller/scheduling"
)

var (
	emojiGo   = helpers.Emoji{Unicode: "🇬"}
	emojiRust = helpers.Emoji{Unicode: "🇷"}
	emojiZig  = helpers.Emoji{Unicode: "🇿"}
)

func stubMessage(messageID string) *discordgo.Message {
	return &discordgo.Message{ID: messageID, ChannelID: "chan1"}
}

func newTestPoll(t *testing.T, multipleChoice bool) *ReactionPollMenu {
	t.Helper()

	poll, err := NewPollMenu("chan1", "msg1", "guild1", []*MenuOption{
		{Emoji: emojiGo, Name: "go"},
		{Emoji: emojiRust, Name: "rust"},
		{Emoji: emojiZig, Name: "zig"},
	}, nil, PollConfig{MultipleChoice: multipleChoice})
	if err != nil {
		t.Fatalf("NewPollMenu() failed: %v", err)
	}
	return poll
}

func TestNewPollMenuDefaults(t *testing.T) {
	poll := newTestPoll(t, false)

	if poll.Desc != "React to this message to vote!" {
		t.Fatalf("default description is %q", poll.Desc)
	}
	if poll.AuthorName != "Poll" {
		t.Fatalf("default author name is %q", poll.AuthorName)
	}
	if poll.Colour != pollDefaultColour {
		t.Fatalf("default colour is %#x", poll.Colour)
	}
	if poll.Icon != pollDefaultIcon {
		t.Fatalf("default icon is %q", poll.Icon)
	}
	if !poll.Saveable() {
		t.Fatalf("poll menus have to be saveable")
	}

	custom, err := NewPollMenu("chan1", "msg2", "guild1", []*MenuOption{
		{Emoji: emojiGo, Name: "go"},
	}, nil, PollConfig{Desc: "favourite language"})
	if err != nil {
		t.Fatalf("NewPollMenu() failed: %v", err)
	}
	if custom.Desc != "*favourite language*" {
		t.Fatalf("custom description is %q", custom.Desc)
	}
}

func TestNewPollMenuRejectsDuplicateOptions(t *testing.T) {
	_, err := NewPollMenu("chan1", "msg1", "guild1", []*MenuOption{
		{Emoji: emojiGo, Name: "first"},
		{Emoji: emojiGo, Name: "second"},
	}, nil, PollConfig{})
	if err != ErrDuplicateOption {
		t.Fatalf("NewPollMenu() accepted two options with the same emoji: %v", err)
	}

	// custom emotes compare by id, not display name
	_, err = NewPollMenu("chan1", "msg1", "guild1", []*MenuOption{
		{Emoji: helpers.Emoji{ID: 42, Name: "blob"}, Name: "first"},
		{Emoji: helpers.Emoji{ID: 42, Name: "renamed"}, Name: "second"},
	}, nil, PollConfig{})
	if err != ErrDuplicateOption {
		t.Fatalf("NewPollMenu() accepted two options with the same emote id: %v", err)
	}
}

func TestTallyVotesSingleChoice(t *testing.T) {
	poll := newTestPoll(t, false)

	results := tallyVotes(poll, []reactionVotes{
		{Emoji: emojiGo, Voters: []string{"alice", "bob"}},
		{Emoji: emojiRust, Voters: []string{"alice", "carol"}},
	})

	if len(results[emojiGo]) != 2 {
		t.Fatalf("expected 2 votes for the first option, got %d", len(results[emojiGo]))
	}
	// alice already voted for the first option, her second vote is dropped
	if len(results[emojiRust]) != 1 || results[emojiRust][0] != "carol" {
		t.Fatalf("expected only carol on the second option, got %v", results[emojiRust])
	}
	if len(results[emojiZig]) != 0 {
		t.Fatalf("expected no votes on the third option, got %v", results[emojiZig])
	}
}

func TestTallyVotesMultipleChoice(t *testing.T) {
	poll := newTestPoll(t, true)

	results := tallyVotes(poll, []reactionVotes{
		{Emoji: emojiGo, Voters: []string{"alice"}},
		{Emoji: emojiRust, Voters: []string{"alice", "bob"}},
	})

	if len(results[emojiGo]) != 1 || len(results[emojiRust]) != 2 {
		t.Fatalf("multiple choice poll dropped votes: %v", results)
	}
}

func TestTallyVotesIgnoresUndeclaredEmojis(t *testing.T) {
	poll := newTestPoll(t, false)

	results := tallyVotes(poll, []reactionVotes{
		{Emoji: helpers.Emoji{Unicode: "🔥"}, Voters: []string{"alice"}},
	})

	for _, votes := range results {
		if len(votes) != 0 {
			t.Fatalf("a reaction on an undeclared emoji was counted: %v", results)
		}
	}

	// the undeclared vote must not lock alice's single choice
	results = tallyVotes(poll, []reactionVotes{
		{Emoji: helpers.Emoji{Unicode: "🔥"}, Voters: []string{"alice"}},
		{Emoji: emojiGo, Voters: []string{"alice"}},
	})
	if len(results[emojiGo]) != 1 {
		t.Fatalf("an undeclared reaction consumed the voter's choice: %v", results)
	}
}

func TestTallyVotesDeduplicates(t *testing.T) {
	poll := newTestPoll(t, true)

	results := tallyVotes(poll, []reactionVotes{
		{Emoji: emojiGo, Voters: []string{"alice", "alice"}},
		{Emoji: emojiGo, Voters: []string{"alice"}},
	})

	if len(results[emojiGo]) != 1 {
		t.Fatalf("duplicate votes did not deduplicate: %v", results[emojiGo])
	}
}

func TestRenderPollResults(t *testing.T) {
	poll := newTestPoll(t, false)

	rendered := renderPollResults(poll, map[helpers.Emoji][]string{
		emojiGo:   {"alice", "bob"},
		emojiRust: {"carol"},
		emojiZig:  nil,
	})

	expected := "```\n" +
		"🏆go   | ========== +2 Votes\n" +
		"  rust | ===== +1 Vote\n" +
		"  zig  |   +0 Votes\n" +
		"```"
	if rendered != expected {
		t.Fatalf("renderPollResults() rendered\n%s\nexpected\n%s", rendered, expected)
	}
}

func TestRenderPollResultsNoVotes(t *testing.T) {
	poll := newTestPoll(t, false)

	rendered := renderPollResults(poll, map[helpers.Emoji][]string{
		emojiGo:   nil,
		emojiRust: nil,
		emojiZig:  nil,
	})
	if rendered != "No votes received!" {
		t.Fatalf("renderPollResults() rendered %q for an empty tally", rendered)
	}
}

func TestRenderPollResultsSharedMaximum(t *testing.T) {
	poll := newTestPoll(t, false)

	rendered := renderPollResults(poll, map[helpers.Emoji][]string{
		emojiGo:   {"alice"},
		emojiRust: {"bob"},
		emojiZig:  nil,
	})

	expected := "```\n" +
		"🏆go   | ========== +1 Vote\n" +
		"🏆rust | ========== +1 Vote\n" +
		"  zig  |   +0 Votes\n" +
		"```"
	if rendered != expected {
		t.Fatalf("renderPollResults() rendered\n%s\nexpected\n%s", rendered, expected)
	}
}

func TestRenderPollResultsAlignsMultibyteNames(t *testing.T) {
	poll, err := NewPollMenu("chan1", "msg1", "guild1", []*MenuOption{
		{Emoji: emojiGo, Name: "café"},
		{Emoji: emojiRust, Name: "go"},
	}, nil, PollConfig{})
	if err != nil {
		t.Fatalf("NewPollMenu() failed: %v", err)
	}

	rendered := renderPollResults(poll, map[helpers.Emoji][]string{
		emojiGo:   {"alice"},
		emojiRust: nil,
	})

	expected := "```\n" +
		"🏆café | ========== +1 Vote\n" +
		"  go   |   +0 Votes\n" +
		"```"
	if rendered != expected {
		t.Fatalf("renderPollResults() rendered\n%s\nexpected\n%s", rendered, expected)
	}
}

func TestPollSnapshotRoundTrip(t *testing.T) {
	scheduling.Tasks.Init(0)

	poll, err := NewPollMenu("chan1", "msg1", "guild1", []*MenuOption{
		{Emoji: emojiGo, Name: "go"},
		{Emoji: helpers.Emoji{ID: 42, Name: "blob"}, Name: "blob option"},
	}, nil, PollConfig{
		MultipleChoice: true,
		OwningUserID:   "alice",
		TargetRoleID:   "role1",
		TitleTxt:       "Favourite language?",
	})
	if err != nil {
		t.Fatalf("NewPollMenu() failed: %v", err)
	}
	poll.Timeout = scheduling.NewTimedTask(
		scheduling.Action{Kind: PollExpiryAction, Arg: "msg1"},
		time.Now().UTC().Add(time.Hour).Truncate(time.Second),
	)

	snapshot := poll.Snapshot()
	if snapshot.Kind != PollMenuKind {
		t.Fatalf("snapshot kind is %q", snapshot.Kind)
	}
	if snapshot.Options["🇬"] != "go" || snapshot.Options["<:blob:42>"] != "blob option" {
		t.Fatalf("snapshot options are %v", snapshot.Options)
	}
	if snapshot.Timeout != poll.Timeout.ExpiryTime.Unix() {
		t.Fatalf("snapshot timeout is %d", snapshot.Timeout)
	}

	restored, err := pollMenuFromSnapshot(stubMessage("msg1"), snapshot)
	if err != nil {
		t.Fatalf("pollMenuFromSnapshot() failed: %v", err)
	}
	if !restored.MultipleChoice || restored.OwningUserID != "alice" || restored.TargetRoleID != "role1" {
		t.Fatalf("restored poll lost its settings: %+v", restored)
	}
	if restored.TitleTxt != "Favourite language?" {
		t.Fatalf("restored poll lost its title: %q", restored.TitleTxt)
	}
	if len(restored.Options) != 2 {
		t.Fatalf("restored poll has %d options", len(restored.Options))
	}
	if restored.Options[helpers.Emoji{ID: 42}] == nil {
		t.Fatalf("restored poll lost its custom emote option")
	}
	if restored.Timeout == nil || !restored.Timeout.ExpiryTime.Equal(poll.Timeout.ExpiryTime) {
		t.Fatalf("restored poll lost its expiry task")
	}
	if scheduling.Tasks.PendingTasks() != 1 {
		t.Fatalf("restore did not re-schedule the expiry task")
	}
	if len(scheduling.Tasks.Snapshot()) != 0 {
		t.Fatalf("a menu-bound expiry task leaked into the task snapshot")
	}

	scheduling.RelaxScheduleLog(scheduling.Tasks.CancelTask(restored.Timeout))
	helpers.UserPollLockRelease("alice")
}

func TestPollRestartRestoresOneExpiryTask(t *testing.T) {
	scheduling.Tasks.Init(0)

	task := scheduling.NewTimedTask(
		scheduling.Action{Kind: PollExpiryAction, Arg: "msg9"},
		time.Now().UTC().Add(time.Hour),
	)
	poll, err := NewPollMenu("chan1", "msg9", "guild1", []*MenuOption{
		{Emoji: emojiGo, Name: "go"},
	}, task, PollConfig{})
	if err != nil {
		t.Fatalf("NewPollMenu() failed: %v", err)
	}
	if err := scheduling.Tasks.ScheduleTask(task); err != nil {
		t.Fatalf("ScheduleTask() failed: %v", err)
	}

	menuSnapshot := poll.Snapshot()
	taskSnapshot := scheduling.Tasks.Snapshot()

	// restart: fresh scheduler, menus restore before the task snapshot
	scheduling.Tasks.Init(0)
	scheduling.Tasks.RegisterAction(PollExpiryAction, ExpirePollResults)
	restored, err := pollMenuFromSnapshot(stubMessage("msg9"), menuSnapshot)
	if err != nil {
		t.Fatalf("pollMenuFromSnapshot() failed: %v", err)
	}
	scheduling.Tasks.Restore(taskSnapshot)

	if got := scheduling.Tasks.PendingTasks(); got != 1 {
		t.Fatalf("one poll holds %d pending expiry tasks after a restart", got)
	}
	scheduling.RelaxScheduleLog(scheduling.Tasks.CancelTask(restored.Timeout))
}

// unreachableTransport fails every request before it leaves the process
type unreachableTransport struct{}

func (unreachableTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("gateway unreachable")
}

func newOfflineSession(t *testing.T) *discordgo.Session {
	t.Helper()

	session, err := discordgo.New("Bot test-token")
	if err != nil {
		t.Fatalf("discordgo.New() failed: %v", err)
	}
	session.Client.Transport = unreachableTransport{}
	return session
}

func TestPollExpiryReleasesOwnerLock(t *testing.T) {
	cache.SetLogger(logrus.New())
	cache.SetSession(newOfflineSession(t))
	scheduling.Tasks.Init(0)
	Menus.Init()

	poll, err := NewPollMenu("chan1", "msg5", "guild1", []*MenuOption{
		{Emoji: emojiGo, Name: "go"},
	}, nil, PollConfig{OwningUserID: "dave"})
	if err != nil {
		t.Fatalf("NewPollMenu() failed: %v", err)
	}
	if !helpers.UserPollLockAcquire("dave") {
		t.Fatalf("UserPollLockAcquire() failed on a free lock")
	}
	Menus.Put(poll)

	// the message fetch fails without a gateway, the lock is released first
	ExpirePollResults("msg5")

	if !helpers.UserPollLockAcquire("dave") {
		t.Fatalf("an expired poll kept its owner's lock")
	}
	helpers.UserPollLockRelease("dave")

	if _, err := Menus.Get("msg5"); err != ErrMenuNotFound {
		t.Fatalf("an expired poll stayed registered: %v", err)
	}
}
