package itinerary

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Period is one MORNING/AFTERNOON/EVENING subsection and the start time
// used when an entry carries no inline time.
type Period struct {
	Label        string
	DefaultStart Clock
}

type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// DefaultPeriods returns the periods in day order.
func DefaultPeriods() []Period {
	return []Period{
		{Label: "MORNING", DefaultStart: Clock{Hour: 9}},
		{Label: "AFTERNOON", DefaultStart: Clock{Hour: 13}},
		{Label: "EVENING", DefaultStart: Clock{Hour: 18}},
	}
}

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(?:([AaPp])\.?\s*[Mm]\.?)?`)

// NormalizeTime converts an "h:mm[ AM|PM]" capture to 24h start and end
// times. An empty or unreadable capture uses def. The end hour is the
// start hour plus one, clamped to 23 with the minute unchanged, so a
// 23:30 start also ends at 23:30.
func NormalizeTime(raw string, def Clock) (start, end string) {
	c, ok := parseClock(raw)
	if !ok {
		c = def
	}
	endHour := c.Hour + 1
	if endHour > 23 {
		endHour = 23
	}
	return c.String(), Clock{Hour: endHour, Minute: c.Minute}.String()
}

func parseClock(raw string) (Clock, bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Clock{}, false
	}
	h, err := strconv.Atoi(m[1])
	if err != nil {
		return Clock{}, false
	}
	mm, err := strconv.Atoi(m[2])
	if err != nil {
		return Clock{}, false
	}
	switch strings.ToLower(m[3]) {
	case "p":
		if h < 12 {
			h += 12
		}
	case "a":
		if h == 12 {
			h = 0
		}
	}
	if h > 23 || mm > 59 {
		return Clock{}, false
	}
	return Clock{Hour: h, Minute: mm}, true
}
