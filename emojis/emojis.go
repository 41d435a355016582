package emojis

import "strconv"

// Default emojis used across the bot
const (
	Cancel  = `🇽`
	Submit  = `✅`
	DMSent  = `📬`
	Error   = `❓`
	Trophy  = `🏆`
	Alarm   = `⏰`
	Writing = `✍`
)

var numbers = map[string]string{
	"0":  `0⃣`,
	"1":  `1⃣`,
	"2":  `2⃣`,
	"3":  `3⃣`,
	"4":  `4⃣`,
	"5":  `5⃣`,
	"6":  `6⃣`,
	"7":  `7⃣`,
	"8":  `8⃣`,
	"9":  `9⃣`,
	"10": `🔟`,
}

// revNumbers is the reverse version of numbers
var revNumbers map[string]string

func init() {
	revNumbers = make(map[string]string, len(numbers))
	for k, v := range numbers {
		revNumbers[v] = k
	}
}

// FromNumber returns the unicode emoji code for the symbol
func FromNumber(symbol string) string {
	return numbers[symbol]
}

// ToNumber returns the number that corresponds to the emoji
func ToNumber(emoji string) int {
	v, err := strconv.Atoi(revNumbers[emoji])
	if err != nil {
		v = -1
	}
	return v
}
