package exhibit

import (
	"math"
	"regexp"
	"strconv"
)

// SentinelKey is the ordering key given to labels with no parsable number.
// No parsed number exceeds it, so those labels sort after every numbered one.
const SentinelKey = math.MaxInt

var (
	// "Exhibit 12", "Tab #3", "Ex. 4"
	wordNumberRe = regexp.MustCompile(`^\s*\p{L}+\.?\s*#?\s*(\d+)`)
	// "2. Motion to Dismiss"
	leadingNumberRe = regexp.MustCompile(`^\s*(\d+)`)
)

// ParseOrderingKey extracts the number a label is ordered by. It recognises a
// leading word followed by a number, or a label that starts with a number.
// The second result is false when the label carries no usable number.
func ParseOrderingKey(label string) (int, bool) {
	for _, re := range []*regexp.Regexp{wordNumberRe, leadingNumberRe} {
		m := re.FindStringSubmatch(label)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// OrderingKey is ParseOrderingKey with SentinelKey substituted for labels
// that carry no number.
func OrderingKey(label string) int {
	if n, ok := ParseOrderingKey(label); ok {
		return n
	}
	return SentinelKey
}
