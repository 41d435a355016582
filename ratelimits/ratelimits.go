package ratelimits

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (
	// Keys a bucket holds when first created
	BucketInitialFill = 16

	// Hard cap on the keys a user may accumulate
	BucketUpperBound = 32

	// Interval between refill passes
	DropInterval = 10 * time.Second

	// Keys added per refill pass
	DropSize = 1
)

// ErrOutOfKeys is returned when a drain exceeds the remaining keys
var ErrOutOfKeys = errors.New("ratelimits: no keys left")

// Global container instance, initialised at boot
var Container = &BucketContainer{}

// BucketContainer maps discord user ids to their remaining key counts
type BucketContainer struct {
	sync.RWMutex

	buckets map[string]int8
}

// Init allocates the bucket map and starts the refiller
func (b *BucketContainer) Init() {
	b.Lock()
	b.buckets = make(map[string]int8)
	b.Unlock()

	go b.refiller()
}

// refiller tops up user buckets in a set interval
func (b *BucketContainer) refiller() {
	for {
		b.Lock()
		for user, keys := range b.buckets {
			switch {
			// users at -1 sit out one extra interval
			case keys == -1:
				b.buckets[user]++
			case keys == 0:
				b.buckets[user] = BucketInitialFill
			case keys < BucketUpperBound:
				b.buckets[user] += DropSize
			}
		}
		b.Unlock()

		time.Sleep(DropInterval)
	}
}

func (b *BucketContainer) ensureBucket(user string) {
	b.RLock()
	_, ok := b.buckets[user]
	b.RUnlock()

	if !ok {
		b.Lock()
		b.buckets[user] = BucketInitialFill
		b.Unlock()
	}
}

// Drain removes $amount keys from $user if enough are left
func (b *BucketContainer) Drain(amount int8, user string) error {
	b.ensureBucket(user)

	b.RLock()
	remaining := b.buckets[user]
	b.RUnlock()

	if amount > remaining {
		return ErrOutOfKeys
	}

	b.Lock()
	b.buckets[user] -= amount
	b.Unlock()

	return nil
}

// HasKeys reports whether $user may still execute commands
func (b *BucketContainer) HasKeys(user string) bool {
	b.ensureBucket(user)

	b.RLock()
	defer b.RUnlock()

	return b.buckets[user] > 0
}

// Get returns the remaining keys of $user
func (b *BucketContainer) Get(user string) int8 {
	b.RLock()
	defer b.RUnlock()

	return b.buckets[user]
}

// Set overrides the remaining keys of $user
func (b *BucketContainer) Set(user string, value int8) {
	b.Lock()
	b.buckets[user] = value
	b.Unlock()
}
