package helpers

import (
	"strings"
	"unicode"
)

// source: https://stackoverflow.com/a/44282136
func ParseKeyValueString(text string) (data map[string]string) {
	lastQuote := rune(0)
	f := func(c rune) bool {
		switch {
		case c == lastQuote:
			lastQuote = rune(0)
			return false
		case lastQuote != rune(0):
			return false
		case unicode.In(c, unicode.Quotation_Mark):
			lastQuote = c
			return false
		default:
			return unicode.IsSpace(c)
		}
	}

	// splitting string by space but considering quoted section
	items := strings.FieldsFunc(text, f)

	// create and fill the map
	data = make(map[string]string)
	for _, item := range items {
		x := strings.SplitN(item, "=", 2)
		if len(x) < 2 {
			continue
		}
		data[strings.ToLower(x[0])] = x[1]
	}
	return data
}

// IsKeyValueArg returns true if $text looks like a key=value argument line
func IsKeyValueArg(text string) bool {
	text = strings.TrimSpace(text)
	eq := strings.Index(text, "=")
	if eq < 1 {
		return false
	}
	for _, c := range text[:eq] {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			return false
		}
	}
	return true
}

// IsMention returns true if $text is a discord user mention
func IsMention(text string) bool {
	return strings.HasPrefix(text, "<@") && !strings.HasPrefix(text, "<@&") && strings.HasSuffix(text, ">")
}

// IsRoleMention returns true if $text is a discord role mention
func IsRoleMention(text string) bool {
	return strings.HasPrefix(text, "<@&") && strings.HasSuffix(text, ">")
}

// MentionID extracts the snowflake from a user or role mention
func MentionID(text string) string {
	return strings.TrimRight(strings.TrimLeft(text, "<@&!"), ">")
}
