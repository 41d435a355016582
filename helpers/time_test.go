package helpers

import (
	"testing"
	"time"
)

func TestDurationFromUnits(t *testing.T) {
	d, err := DurationFromUnits(1, 2, 3, 4)
	if err != nil || d != 26*time.Hour+3*time.Minute+4*time.Second {
		t.Fatalf("DurationFromUnits() returned %v %v", d, err)
	}

	d, err = DurationFromUnits(TimeUnitOff, TimeUnitOff, 5, TimeUnitOff)
	if err != nil || d != 5*time.Minute {
		t.Fatalf("DurationFromUnits() mishandled disabled units: %v %v", d, err)
	}

	if _, err = DurationFromUnits(TimeUnitOff, TimeUnitOff, TimeUnitOff, TimeUnitOff); err != ErrNoTimeUnits {
		t.Fatalf("DurationFromUnits() accepted all units disabled")
	}

	if _, err = DurationFromUnits(0, 0, 0, 0); err != ErrNoTimeUnits {
		t.Fatalf("DurationFromUnits() accepted an all-zero unit set")
	}
}

func TestHumanizeDuration(t *testing.T) {
	if s := HumanizeDuration(90 * time.Second); s != "1m30s" {
		t.Fatalf("HumanizeDuration(90s) returned %q", s)
	}
	if s := HumanizeDuration(26*time.Hour + 5*time.Minute); s != "1d2h5m" {
		t.Fatalf("HumanizeDuration(26h5m) returned %q", s)
	}
	if s := HumanizeDuration(5 * time.Minute); s != "5m" {
		t.Fatalf("HumanizeDuration(5m) returned %q", s)
	}
}

func TestParseClock(t *testing.T) {
	hours, minutes, err := ParseClock("14:30")
	if err != nil || hours != 14 || minutes != 30 {
		t.Fatalf("ParseClock(14:30) returned %d:%d %v", hours, minutes, err)
	}

	hours, minutes, err = ParseClock("2:30 pm")
	if err != nil || hours != 14 || minutes != 30 {
		t.Fatalf("ParseClock(2:30 pm) returned %d:%d %v", hours, minutes, err)
	}

	hours, minutes, err = ParseClock("11:05am")
	if err != nil || hours != 11 || minutes != 5 {
		t.Fatalf("ParseClock(11:05am) returned %d:%d %v", hours, minutes, err)
	}

	if _, _, err = ParseClock("25:00"); err == nil {
		t.Fatalf("ParseClock() accepted hour 25")
	}
	if _, _, err = ParseClock("12:61"); err == nil {
		t.Fatalf("ParseClock() accepted minute 61")
	}
	if _, _, err = ParseClock("13:00 pm"); err == nil {
		t.Fatalf("ParseClock() accepted hour 13 on a 12 hour clock")
	}
	if _, _, err = ParseClock("noon"); err == nil {
		t.Fatalf("ParseClock() accepted plain text")
	}
}

func TestGuessUTCOffset(t *testing.T) {
	now := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)

	if offset := GuessUTCOffset(now, 14, 0); offset != 2*time.Hour {
		t.Fatalf("GuessUTCOffset() guessed %v for UTC+2", offset)
	}
	if offset := GuessUTCOffset(now, 7, 30); offset != -4*time.Hour-30*time.Minute {
		t.Fatalf("GuessUTCOffset() guessed %v for UTC-4:30", offset)
	}

	// wrap around midnight
	if offset := GuessUTCOffset(time.Date(2020, 6, 1, 23, 0, 0, 0, time.UTC), 1, 0); offset != 2*time.Hour {
		t.Fatalf("GuessUTCOffset() failed to wrap around midnight")
	}

	// minutes round to the nearest quarter hour
	if offset := GuessUTCOffset(now, 14, 7); offset != 2*time.Hour {
		t.Fatalf("GuessUTCOffset() failed to round down to the nearest quarter hour")
	}
	if offset := GuessUTCOffset(now, 14, 8); offset != 2*time.Hour+15*time.Minute {
		t.Fatalf("GuessUTCOffset() failed to round up to the nearest quarter hour")
	}
}

func TestOffsetLetters(t *testing.T) {
	if letter := OffsetLetter(0); letter != "Z" {
		t.Fatalf("OffsetLetter(0) returned %q", letter)
	}
	if letter := OffsetLetter(2 * time.Hour); letter != "B" {
		t.Fatalf("OffsetLetter(+2) returned %q", letter)
	}
	if letter := OffsetLetter(-5 * time.Hour); letter != "R" {
		t.Fatalf("OffsetLetter(-5) returned %q", letter)
	}

	offset, ok := LetterOffset("I+")
	if !ok || offset != 9*time.Hour+30*time.Minute {
		t.Fatalf("LetterOffset(I+) returned %v %v", offset, ok)
	}
	if _, ok = LetterOffset("?"); ok {
		t.Fatalf("LetterOffset() resolved an unknown letter")
	}
}
