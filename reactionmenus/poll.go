package reactionmenus

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	humanize "github.com/dustin/go-humanize"
	"github.com/storytellerbot/storyteller/cache"
	"github.com/storytellerbot/storyteller/helpers"
	"github.com/storytellerbot/storyteller/models"
	"github.com/storytellerbot/storyteller/scheduling"
)

const (
	// PollMenuKind tags poll menus in persisted snapshots
	PollMenuKind = "poll"

	// PollExpiryAction is the scheduling action kind bound to poll expiry
	PollExpiryAction = "poll-expire"

	// pollResultsBarLength is the width of a full results bar
	pollResultsBarLength = 10

	pollClosedFooter  = "This poll has ended."
	pollErrorNotice   = "An error occured when calculating the results of this poll. The error has been logged."
	pollDefaultColour = 0x3498DB
	pollDefaultIcon   = "https://emojipedia-us.s3.dualstack.us-west-1.amazonaws.com/thumbs/120/twitter/259/ballot-box-with-ballot_1f5f3.png"
)

// PollConfig carries the optional settings of a new poll menu
type PollConfig struct {
	MultipleChoice bool
	// OwningUserID releases the one-poll-per-user lock when the poll resolves
	OwningUserID string
	TargetUserID string
	TargetRoleID string
	TitleTxt     string
	Desc         string
	Colour       int
	FooterTxt    string
	Img          string
	Thumb        string
	Icon         string
	AuthorName   string
}

// ReactionPollMenu is a saveable menu taking a vote from its participants
// on a selection of options. The options carry no live behaviour, all
// vote counting takes place once, at expiry.
type ReactionPollMenu struct {
	ReactionMenu

	MultipleChoice bool
	OwningUserID   string
}

// NewPollMenu builds a poll menu bound to an already sent message. The
// option emoji set has to be injective, a repeated emoji fails with
// ErrDuplicateOption before anything is mutated.
func NewPollMenu(channelID, messageID, guildID string, options []*MenuOption,
	timeout *scheduling.TimedTask, config PollConfig) (*ReactionPollMenu, error) {

	base, err := newReactionMenu(channelID, messageID, guildID, options)
	if err != nil {
		return nil, err
	}

	base.TitleTxt = config.TitleTxt
	base.FooterTxt = config.FooterTxt
	base.Img = config.Img
	base.Thumb = config.Thumb
	base.TargetUserID = config.TargetUserID
	base.TargetRoleID = config.TargetRoleID
	base.Timeout = timeout
	base.CanSave = true

	// the menu snapshot persists the expiry task, keep it out of the
	// scheduler snapshot so a restart does not restore it twice
	if timeout != nil {
		timeout.Transient = true
	}

	base.Desc = "React to this message to vote!"
	if config.Desc != "" {
		base.Desc = "*" + config.Desc + "*"
	}

	base.AuthorName = config.AuthorName
	if base.AuthorName == "" {
		base.AuthorName = "Poll"
	}

	base.Icon = config.Icon
	if base.Icon == "" {
		base.Icon = pollDefaultIcon
	}

	base.Colour = config.Colour
	if base.Colour == 0 {
		base.Colour = pollDefaultColour
	}

	return &ReactionPollMenu{
		ReactionMenu:   base,
		MultipleChoice: config.MultipleChoice,
		OwningUserID:   config.OwningUserID,
	}, nil
}

func (m *ReactionPollMenu) Kind() string {
	return PollMenuKind
}

// Embed renders the poll message embed
func (m *ReactionPollMenu) Embed() *discordgo.MessageEmbed {
	embed := m.baseEmbed()

	if m.MultipleChoice {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "This is a multiple choice poll!",
			Value:  "Voting for more than one option is allowed.",
			Inline: false,
		})
	} else {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "This is a single choice poll!",
			Value:  "If you vote for more than one option, only one will be counted.",
			Inline: false,
		})
	}

	return embed
}

// Snapshot serializes the poll for persistence
func (m *ReactionPollMenu) Snapshot() *models.MenuSnapshot {
	snapshot := m.baseSnapshot()
	snapshot.Kind = PollMenuKind
	snapshot.MultipleChoice = m.MultipleChoice
	snapshot.OwningUserID = m.OwningUserID
	return snapshot
}

// Delete closes the poll before its expiry. Idempotent.
func (m *ReactionPollMenu) Delete() error {
	if m.OwningUserID != "" && !m.closed() {
		helpers.UserPollLockRelease(m.OwningUserID)
	}
	return m.close(expiredMenuMsg)
}

// pollMenuFromSnapshot reconstructs a poll menu from its persisted form,
// re-scheduling its expiry task. The opposite of Snapshot.
func pollMenuFromSnapshot(message *discordgo.Message, snapshot *models.MenuSnapshot) (*ReactionPollMenu, error) {
	options := make([]*MenuOption, 0, len(snapshot.Options))
	for token, name := range snapshot.Options {
		emoji, err := helpers.ParseEmoji(token)
		if err != nil {
			return nil, err
		}
		options = append(options, &MenuOption{Emoji: emoji, Name: name})
	}

	var timeout *scheduling.TimedTask
	if snapshot.Timeout > 0 {
		timeout = scheduling.NewTimedTask(
			scheduling.Action{Kind: PollExpiryAction, Arg: message.ID},
			time.Unix(snapshot.Timeout, 0).UTC(),
		)
		if err := scheduling.Tasks.ScheduleTask(timeout); err != nil {
			return nil, err
		}
	}

	poll, err := NewPollMenu(snapshot.ChannelID, message.ID, snapshot.GuildID, options, timeout, PollConfig{
		MultipleChoice: snapshot.MultipleChoice,
		OwningUserID:   snapshot.OwningUserID,
		TargetUserID:   snapshot.TargetUserID,
		TargetRoleID:   snapshot.TargetRoleID,
		TitleTxt:       snapshot.TitleTxt,
		Colour:         snapshot.Col,
		FooterTxt:      snapshot.FooterTxt,
		Img:            snapshot.Img,
		Thumb:          snapshot.Thumb,
		Icon:           snapshot.Icon,
		AuthorName:     snapshot.AuthorName,
	})
	if err != nil {
		return nil, err
	}

	// the snapshot carries the description verbatim, skip re-decoration
	if snapshot.Desc != "" {
		poll.Desc = snapshot.Desc
	}

	// the poll lock table is in-process state, re-acquire for the owner
	if poll.OwningUserID != "" {
		helpers.UserPollLockAcquire(poll.OwningUserID)
	}
	return poll, nil
}

// reactionVotes is one live reaction on the poll message: a normalized
// emoji and its voters, in the order the platform returned them
type reactionVotes struct {
	Emoji  helpers.Emoji
	Voters []string
}

// ExpirePollResults is the expiry handler for poll menus: count the
// reactions on the menu message, selecting only one option per user for
// single-choice polls, and replace the menu content with a bar chart
// summarising the results.
func ExpirePollResults(messageID string) {
	menu, err := Menus.Get(messageID)
	if err != nil {
		// already cleaned up
		return
	}
	poll, ok := menu.(*ReactionPollMenu)
	if !ok {
		cache.GetLogger().WithField("module", "reactionmenus").Error(
			"expiry task fired for non-poll menu #" + messageID)
		return
	}

	if poll.OwningUserID != "" {
		helpers.UserPollLockRelease(poll.OwningUserID)
	}

	liveMessage, err := helpers.GetMessage(poll.ChanID, poll.MsgID)
	if err != nil {
		// expiries fire once, a failed tally is not retried
		helpers.RelaxLog(err)
		Menus.deregister(poll.MsgID)
		return
	}

	reactions, err := fetchReactionVotes(poll, liveMessage)
	if err != nil {
		cache.GetLogger().WithField("module", "reactionmenus").Error(
			"aborting tally for poll #" + messageID + ": " + err.Error())
		closePollWithError(poll, liveMessage)
		return
	}

	results := tallyVotes(poll, reactions)
	resultsText := renderPollResults(poll, results)

	embed := poll.Embed()
	if len(liveMessage.Embeds) > 0 {
		embed = liveMessage.Embeds[0]
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: pollClosedFooter}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Results",
		Value:  resultsText,
		Inline: false,
	})

	_, err = helpers.EditEmbed(poll.ChanID, poll.MsgID, embed)
	helpers.RelaxLog(err)

	// drop the automated option reactions
	for _, key := range poll.OptionOrder {
		err = cache.GetSession().MessageReactionRemove(
			poll.ChanID, poll.MsgID, poll.Options[key].Emoji.Sendable(), "@me")
		helpers.RelaxLog(err)
	}

	poll.markClosed()
	Menus.deregister(poll.MsgID)
}

// fetchReactionVotes reads the live reaction state of the poll message
// and normalizes every reaction emoji. Any emoji that can not be
// normalized aborts the fetch, a partial tally is never produced.
func fetchReactionVotes(poll *ReactionPollMenu, message *discordgo.Message) ([]reactionVotes, error) {
	session := cache.GetSession()
	botID := session.State.User.ID

	reactions := make([]reactionVotes, 0, len(message.Reactions))
	for _, reaction := range message.Reactions {
		emoji, err := helpers.EmojiFromAPI(reaction.Emoji)
		if err != nil {
			return nil, err
		}

		users, err := session.MessageReactions(
			message.ChannelID, message.ID, reaction.Emoji.APIName(), 100, "", "")
		if err != nil {
			return nil, err
		}

		votes := reactionVotes{Emoji: emoji}
		for _, user := range users {
			if user.ID == botID {
				continue
			}
			votes.Voters = append(votes.Voters, user.ID)
		}
		reactions = append(reactions, votes)
	}

	return reactions, nil
}

// tallyVotes reconciles live reactions into per-option vote sets.
// Reactions on emojis that are not declared options are ignored. For
// single-choice polls a user's first-seen option wins and later votes are
// discarded; the tie-break follows the platform's enumeration order,
// which is not guaranteed stable. Duplicate votes deduplicate.
func tallyVotes(poll *ReactionPollMenu, reactions []reactionVotes) map[helpers.Emoji][]string {
	results := make(map[helpers.Emoji][]string, len(poll.Options))
	for _, key := range poll.OptionOrder {
		results[key] = nil
	}

	voted := make(map[string]helpers.Emoji)
	for _, reaction := range reactions {
		key := reaction.Emoji.Key()
		if _, declared := results[key]; !declared {
			continue
		}

		for _, userID := range reaction.Voters {
			if firstKey, ok := voted[userID]; ok {
				if !poll.MultipleChoice && firstKey != key {
					continue
				}
			}
			duplicate := false
			for _, seen := range results[key] {
				if seen == userID {
					duplicate = true
					break
				}
			}
			if duplicate {
				continue
			}

			results[key] = append(results[key], userID)
			if _, ok := voted[userID]; !ok {
				voted[userID] = key
			}
		}
	}

	return results
}

// renderPollResults renders the monospaced bar chart summarising $results
func renderPollResults(poll *ReactionPollMenu, results map[helpers.Emoji][]string) string {
	maxOptionLen := 0
	maxCount := 0
	totalVotes := 0
	for _, key := range poll.OptionOrder {
		// runes, not bytes, multi-byte option names align too
		if nameLen := utf8.RuneCountInString(poll.Options[key].Name); nameLen > maxOptionLen {
			maxOptionLen = nameLen
		}
		if count := len(results[key]); count > maxCount {
			maxCount = count
		}
		totalVotes += len(results[key])
	}

	if maxCount == 0 {
		return "No votes received!"
	}

	var builder strings.Builder
	builder.WriteString("```\n")
	for _, key := range poll.OptionOrder {
		option := poll.Options[key]
		count := len(results[key])

		if count == maxCount {
			builder.WriteString("🏆")
		} else {
			builder.WriteString("  ")
		}
		builder.WriteString(option.Name)
		builder.WriteString(strings.Repeat(" ", maxOptionLen-utf8.RuneCountInString(option.Name)))
		builder.WriteString(" | ")
		builder.WriteString(strings.Repeat("=", count*pollResultsBarLength/maxCount))
		if count == 0 {
			builder.WriteString(" ")
		}
		builder.WriteString(" +" + humanize.Comma(int64(count)) + " Vote")
		if count != 1 {
			builder.WriteString("s")
		}
		builder.WriteString("\n")
	}
	builder.WriteString("```")

	return builder.String()
}

// closePollWithError edits the poll message into its errored terminal
// state. The menu is still deregistered, errored tallies never retry.
func closePollWithError(poll *ReactionPollMenu, message *discordgo.Message) {
	_, err := helpers.EditComplex(terminalEdit(message, poll.ChanID, poll.MsgID, pollErrorNotice, pollClosedFooter))
	helpers.RelaxLog(err)

	poll.markClosed()
	Menus.deregister(poll.MsgID)
}

// markClosed flips the menu into its terminal state without running the
// deletion path, used when the tally already edited the message
func (m *ReactionPollMenu) markClosed() {
	m.deleteLock.Lock()
	m.deleted = true
	m.deleteLock.Unlock()
}
