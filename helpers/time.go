package helpers

import (
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// ErrNoTimeUnits is returned when every run-length unit of a timeout is disabled
var ErrNoTimeUnits = errors.New("helpers: all time units disabled")

// TimeUnitOff marks a disabled unit in a unit set
const TimeUnitOff = -1

// DurationFromUnits builds a duration from day/hour/minute/second counts.
// A unit may be TimeUnitOff (disabled) or zero (unspecified); at least one
// unit has to carry a positive value, otherwise ErrNoTimeUnits is returned.
func DurationFromUnits(days, hours, minutes, seconds int) (time.Duration, error) {
	total := time.Duration(0)
	for _, unit := range []struct {
		value int
		d     time.Duration
	}{
		{days, 24 * time.Hour},
		{hours, time.Hour},
		{minutes, time.Minute},
		{seconds, time.Second},
	} {
		if unit.value > 0 {
			total += time.Duration(unit.value) * unit.d
		}
	}

	if total <= 0 {
		return 0, ErrNoTimeUnits
	}
	return total, nil
}

func HumanizeDuration(d time.Duration) (result string) {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) - (hours * 60)
	seconds := int(d.Seconds()) - (minutes * 60) - (hours * 60 * 60)

	if hours > 0 {
		days := hours / 24
		hoursLeft := hours % 24
		if days > 0 {
			result += strconv.Itoa(days) + "d"
		}
		if hoursLeft > 0 {
			result += strconv.Itoa(hoursLeft) + "h"
		}
	}
	if minutes > 0 {
		result += strconv.Itoa(minutes) + "m"
	}
	if seconds > 0 {
		result += strconv.Itoa(seconds) + "s"
	}
	return result
}

// utcOffsets maps military timezone letters to their UTC offset
var utcOffsets = map[string]time.Duration{
	"Y":   -12 * time.Hour,
	"X":   -11 * time.Hour,
	"W":   -10 * time.Hour,
	"V+":  -9*time.Hour - 30*time.Minute,
	"V":   -9 * time.Hour,
	"U":   -8 * time.Hour,
	"T":   -7 * time.Hour,
	"S":   -6 * time.Hour,
	"R":   -5 * time.Hour,
	"Q":   -4 * time.Hour,
	"P+":  -3*time.Hour - 30*time.Minute,
	"P":   -3 * time.Hour,
	"O":   -2 * time.Hour,
	"N":   -1 * time.Hour,
	"Z":   0,
	"A":   1 * time.Hour,
	"B":   2 * time.Hour,
	"C":   3 * time.Hour,
	"C+":  3*time.Hour + 30*time.Minute,
	"D":   4 * time.Hour,
	"D+":  4*time.Hour + 30*time.Minute,
	"E":   5 * time.Hour,
	"E+":  5*time.Hour + 30*time.Minute,
	"E*":  5*time.Hour + 45*time.Minute,
	"F":   6 * time.Hour,
	"F+":  6*time.Hour + 30*time.Minute,
	"G":   7 * time.Hour,
	"H":   8 * time.Hour,
	"H+":  8*time.Hour + 45*time.Minute,
	"I":   9 * time.Hour,
	"I+":  9*time.Hour + 30*time.Minute,
	"K":   10 * time.Hour,
	"K+":  10*time.Hour + 30*time.Minute,
	"L":   11 * time.Hour,
	"M":   12 * time.Hour,
	"M*":  12*time.Hour + 45*time.Minute,
	"M+":  13 * time.Hour,
	"M++": 14 * time.Hour,
}

var clockRegex = regexp.MustCompile(`^(\d\d?):(\d\d) ?(am|pm)?$`)

// ParseClock parses a "HH:MM", "HH:MM am" or "HH:MM pm" wall-clock string
// into hours and minutes on a 24 hour clock
func ParseClock(text string) (hours, minutes int, err error) {
	parts := clockRegex.FindStringSubmatch(text)
	if parts == nil {
		return 0, 0, errors.New("helpers: not a valid time")
	}

	hours, _ = strconv.Atoi(parts[1])
	minutes, _ = strconv.Atoi(parts[2])

	if minutes > 59 {
		return 0, 0, errors.New("helpers: not a valid time")
	}

	switch parts[3] {
	case "":
		if hours > 23 {
			return 0, 0, errors.New("helpers: not a valid time")
		}
	case "am", "pm":
		if hours > 11 {
			return 0, 0, errors.New("helpers: not a valid time")
		}
		if parts[3] == "pm" {
			hours += 12
		}
	}

	return hours, minutes, nil
}

// GuessUTCOffset guesses the UTC offset of a user given the wall-clock
// time they reported, by comparing against $now (UTC) and rounding to the
// nearest 15 minutes
func GuessUTCOffset(now time.Time, hours, minutes int) time.Duration {
	stated := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	actual := time.Duration(now.Hour())*time.Hour + time.Duration(now.Minute())*time.Minute

	offset := stated - actual
	if offset > 12*time.Hour {
		offset -= 24 * time.Hour
	}
	if offset < -12*time.Hour {
		offset += 24 * time.Hour
	}

	// round to the nearest quarter hour
	return offset.Round(15 * time.Minute)
}

// OffsetLetter resolves an UTC offset to the closest military timezone letter
func OffsetLetter(offset time.Duration) (letter string) {
	best := time.Duration(1<<62 - 1)
	for l, d := range utcOffsets {
		diff := offset - d
		if diff < 0 {
			diff = -diff
		}
		if diff < best || (diff == best && l < letter) {
			best = diff
			letter = l
		}
	}
	return letter
}

// LetterOffset returns the UTC offset of a military timezone letter
func LetterOffset(letter string) (time.Duration, bool) {
	d, ok := utcOffsets[letter]
	return d, ok
}
