package helpers

import "testing"

func TestUserPollLock(t *testing.T) {
	if !UserPollLockAcquire("alice") {
		t.Fatalf("a free poll lock was not acquired")
	}
	// one poll at a time, the second acquire has to fail
	if UserPollLockAcquire("alice") {
		t.Fatalf("one user acquired two poll locks")
	}
	if !UserPollLockAcquire("bob") {
		t.Fatalf("one user's poll lock blocked another user")
	}

	UserPollLockRelease("alice")
	if !UserPollLockAcquire("alice") {
		t.Fatalf("a released poll lock could not be acquired again")
	}

	UserPollLockRelease("alice")
	UserPollLockRelease("bob")
}

func TestUserPollLockReleaseUnheld(t *testing.T) {
	UserPollLockRelease("carol")

	if !UserPollLockAcquire("carol") {
		t.Fatalf("releasing an unheld lock locked the user out")
	}
	UserPollLockRelease("carol")
}
