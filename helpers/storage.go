package helpers

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/cache"
	"github.com/go-redis/redis"
	cacheLib "github.com/storytellerbot/storyteller/cache"
	"github.com/storytellerbot/storyteller/models"
)

const (
	guildRecordKeyPrefix = "storyteller:guild:"
	userRecordKeyPrefix  = "storyteller:user:"
	menusSnapshotKey     = "storyteller:menus"
	tasksSnapshotKey     = "storyteller:tasks"

	recordCacheExpiry = time.Hour
)

var (
	guildRecordsLock sync.Mutex
	userRecordsLock  sync.Mutex

	pollLocksLock sync.Mutex
	pollLocks     = make(map[string]struct{})
)

// GuildRecordGet reads the record of $guildID, falling back to a fresh
// record with default values when none is stored yet
func GuildRecordGet(guildID string) (entry models.GuildEntry) {
	err := cacheLib.GetRedisCacheCodec().Get(guildRecordKeyPrefix+guildID, &entry)
	if err != nil {
		entry = models.GuildEntry{
			ID:     guildID,
			Prefix: GetConfig().Path("bot.prefix").Data().(string),
		}
	}
	return entry
}

// GuildRecordSet writes the record of $guildID
func GuildRecordSet(guildID string, entry models.GuildEntry) error {
	guildRecordsLock.Lock()
	defer guildRecordsLock.Unlock()

	entry.ID = guildID
	return cacheLib.GetRedisCacheCodec().Set(&cache.Item{
		Key:        guildRecordKeyPrefix + guildID,
		Object:     entry,
		Expiration: recordCacheExpiry,
	})
}

// UserRecordGet reads the record of $userID, falling back to a fresh
// record when none is stored yet
func UserRecordGet(userID string) (entry models.UserEntry) {
	err := cacheLib.GetRedisCacheCodec().Get(userRecordKeyPrefix+userID, &entry)
	if err != nil {
		entry = models.UserEntry{ID: userID}
	}
	return entry
}

// UserRecordSet writes the record of $userID
func UserRecordSet(userID string, entry models.UserEntry) error {
	userRecordsLock.Lock()
	defer userRecordsLock.Unlock()

	entry.ID = userID
	return cacheLib.GetRedisCacheCodec().Set(&cache.Item{
		Key:        userRecordKeyPrefix + userID,
		Object:     entry,
		Expiration: recordCacheExpiry,
	})
}

// UserPollLockAcquire marks $userID as owning a running poll. Returns
// false without mutating anything if the user already owns one. The
// check-and-set runs under one lock so two concurrently created polls can
// not both succeed. The table is process-wide, restored polls re-acquire
// their owner's lock when the menu registry loads them.
func UserPollLockAcquire(userID string) bool {
	pollLocksLock.Lock()
	defer pollLocksLock.Unlock()

	if _, ok := pollLocks[userID]; ok {
		return false
	}
	pollLocks[userID] = struct{}{}
	return true
}

// UserPollLockRelease clears the poll ownership of $userID. Releasing an
// unheld lock is a no-op.
func UserPollLockRelease(userID string) {
	pollLocksLock.Lock()
	defer pollLocksLock.Unlock()

	delete(pollLocks, userID)
}

// SaveMenusSnapshot persists the serialized reaction menu registry
func SaveMenusSnapshot(snapshot map[string]*models.MenuSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return cacheLib.GetRedisClient().Set(menusSnapshotKey, data, 0).Err()
}

// LoadMenusSnapshot reads the persisted reaction menu registry, returning
// an empty snapshot when nothing was saved yet
func LoadMenusSnapshot() (snapshot map[string]*models.MenuSnapshot, err error) {
	data, err := cacheLib.GetRedisClient().Get(menusSnapshotKey).Bytes()
	if err == redis.Nil {
		return map[string]*models.MenuSnapshot{}, nil
	}
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal(data, &snapshot)
	return snapshot, err
}

// SaveTasksSnapshot persists the serialized scheduler state
func SaveTasksSnapshot(snapshot map[string]models.TaskSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return cacheLib.GetRedisClient().Set(tasksSnapshotKey, data, 0).Err()
}

// LoadTasksSnapshot reads the persisted scheduler state, returning an
// empty snapshot when nothing was saved yet
func LoadTasksSnapshot() (snapshot map[string]models.TaskSnapshot, err error) {
	data, err := cacheLib.GetRedisClient().Get(tasksSnapshotKey).Bytes()
	if err == redis.Nil {
		return map[string]models.TaskSnapshot{}, nil
	}
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal(data, &snapshot)
	return snapshot, err
}
