package reactionmenus

import (
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/storytellerbot/storyteller/cache"
	"github.com/storytellerbot/storyteller/helpers"
	"github.com/storytellerbot/storyteller/metrics"
	"github.com/storytellerbot/storyteller/models"
)

// MessageResolver re-binds a persisted menu to its live message
type MessageResolver func(channelID, messageID string) (*discordgo.Message, error)

// Global pointer to the menu registry instance
var Menus = &Registry{}

// Registry maps message IDs to their live reaction menus. Mutations are
// mutex-guarded since gateway events arrive on separate goroutines.
type Registry struct {
	sync.Mutex

	menus map[string]Menu
}

// Init allocates the menu map
func (r *Registry) Init() {
	r.Lock()
	r.menus = make(map[string]Menu)
	r.Unlock()
}

// Put registers $menu under its message ID
func (r *Registry) Put(menu Menu) {
	r.Lock()
	r.menus[menu.MessageID()] = menu
	r.Unlock()

	metrics.ActiveMenus.Add(1)
}

// Get resolves the menu bound to $messageID
func (r *Registry) Get(messageID string) (Menu, error) {
	r.Lock()
	defer r.Unlock()

	menu, ok := r.menus[messageID]
	if !ok {
		return nil, ErrMenuNotFound
	}
	return menu, nil
}

// Delete closes and deregisters the menu bound to $messageID
func (r *Registry) Delete(messageID string) error {
	menu, err := r.Get(messageID)
	if err != nil {
		return err
	}
	return menu.Delete()
}

// deregister removes a menu from the map without touching the menu
// itself, menus call this at the end of their own deletion path
func (r *Registry) deregister(messageID string) {
	r.Lock()
	defer r.Unlock()

	if _, ok := r.menus[messageID]; ok {
		delete(r.menus, messageID)
		metrics.ActiveMenus.Add(-1)
	}
}

// HandleReactionAdd dispatches a gateway reaction-add event to its menu,
// filtering the bot's own automated reactions and actors excluded by the
// menu's target restriction
func (r *Registry) HandleReactionAdd(reaction *discordgo.MessageReactionAdd) {
	menu, err := r.Get(reaction.MessageID)
	if err != nil {
		return
	}
	if reaction.UserID == cache.GetSession().State.User.ID {
		return
	}

	emoji, err := helpers.EmojiFromAPI(&reaction.Emoji)
	if err != nil {
		return
	}

	if menu.AllowsActor(reaction.UserID) {
		menu.ReactionAdded(reaction.UserID, emoji)
	}
}

// HandleReactionRemove dispatches a gateway reaction-remove event to its menu
func (r *Registry) HandleReactionRemove(reaction *discordgo.MessageReactionRemove) {
	menu, err := r.Get(reaction.MessageID)
	if err != nil {
		return
	}
	if reaction.UserID == cache.GetSession().State.User.ID {
		return
	}

	emoji, err := helpers.EmojiFromAPI(&reaction.Emoji)
	if err != nil {
		return
	}

	if menu.AllowsActor(reaction.UserID) {
		menu.ReactionRemoved(reaction.UserID, emoji)
	}
}

// SaveAll serializes every saveable menu for persistence
func (r *Registry) SaveAll() map[string]*models.MenuSnapshot {
	r.Lock()
	defer r.Unlock()

	snapshot := make(map[string]*models.MenuSnapshot, len(r.menus))
	for messageID, menu := range r.menus {
		if !menu.Saveable() {
			continue
		}
		entry := menu.Snapshot()
		entry.Kind = menu.Kind()
		snapshot[messageID] = entry
	}
	return snapshot
}

// LoadAll reconstructs menus from a persisted snapshot, re-binding each to
// its live message through $resolve. Menus whose message no longer exists
// are dropped silently; expiry tasks are re-scheduled into the task
// scheduler, firing on the next tick when their deadline already elapsed.
func (r *Registry) LoadAll(snapshot map[string]*models.MenuSnapshot, resolve MessageResolver) {
	log := cache.GetLogger().WithField("module", "reactionmenus")

	for messageID, entry := range snapshot {
		message, err := resolve(entry.ChannelID, messageID)
		if err != nil || message == nil {
			// message deleted externally while the bot was down
			log.Debug("dropping menu for unresolvable message #" + messageID)
			continue
		}

		var menu Menu
		switch entry.Kind {
		case PollMenuKind:
			menu, err = pollMenuFromSnapshot(message, entry)
		default:
			log.Error("dropping menu of unknown kind: " + entry.Kind)
			continue
		}

		if err != nil {
			log.Error("failed to restore menu for message #" + messageID + ": " + err.Error())
			continue
		}
		r.Put(menu)
	}
}
