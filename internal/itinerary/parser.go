package itinerary

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/suPer8Hu/pawtrip/internal/trip"
)

var (
	// a heading may follow prose on the same line; "day 6:30" is a time, not a heading
	dayHeading   = regexp.MustCompile(`(?im)\bDAY\s+(\d+)[ \t*_]*:(?:$|[^\d\n][^\n]*)`)
	periodHeader = regexp.MustCompile(`(?im)^[ \t#*_>-]*(MORNING|AFTERNOON|EVENING)\b[ \t*_]*(?:\([^)\n]*\)[ \t*_]*)?(?:[:–—-]|$)[ \t*_]*`)
)

// Parser turns day-structured itinerary text into trip days. It never
// fails: headings, periods and entries that do not match are skipped.
type Parser struct {
	Periods []Period
	NewID   func() string
}

func NewParser() *Parser {
	return &Parser{Periods: DefaultPeriods(), NewID: uuid.NewString}
}

// Parse returns a copy of days with the activities found in text. A day
// is replaced only when at least one activity was extracted for it, and
// day numbers outside 1..len(days) are ignored.
func (p *Parser) Parse(text string, days []trip.Day) []trip.Day {
	out := trip.CloneDays(days)
	for _, b := range SplitDays(text) {
		idx := dayIndex(out, b.Number)
		if idx < 0 {
			continue
		}
		acts := p.parseDay(b.Text)
		if len(acts) > 0 {
			out[idx].Activities = acts
		}
	}
	return out
}

// DayBlock is the text following one "DAY n:" heading up to the next
// heading or end of text.
type DayBlock struct {
	Number int
	Text   string
}

// SplitDays segments text on DAY headings. Headings whose number does
// not fit an int are dropped.
func SplitDays(text string) []DayBlock {
	locs := dayHeading.FindAllStringSubmatchIndex(text, -1)
	var out []DayBlock
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		n, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		out = append(out, DayBlock{Number: n, Text: text[loc[1]:end]})
	}
	return out
}

// SplitPeriods returns the section text for each label found in block,
// keyed by upper-case label. A section runs from the first occurrence of
// its label to the next period label or the end of the block.
func SplitPeriods(block string) map[string]string {
	locs := periodHeader.FindAllStringSubmatchIndex(block, -1)
	out := make(map[string]string, len(locs))
	for i, loc := range locs {
		label := strings.ToUpper(block[loc[2]:loc[3]])
		if _, seen := out[label]; seen {
			continue
		}
		end := len(block)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		out[label] = block[loc[1]:end]
	}
	return out
}

func (p *Parser) parseDay(block string) []trip.Activity {
	sections := SplitPeriods(block)
	var acts []trip.Activity
	for _, period := range p.periods() {
		section, ok := sections[strings.ToUpper(period.Label)]
		if !ok {
			continue
		}
		for _, e := range ExtractEntries(section) {
			acts = append(acts, p.toActivity(e, period))
		}
	}
	return acts
}

func (p *Parser) toActivity(e Entry, period Period) trip.Activity {
	start, end := NormalizeTime(e.Time, period.DefaultStart)
	return trip.Activity{
		ID:            p.newID(),
		Type:          e.Type,
		Title:         e.Title,
		Description:   e.Description,
		Location:      e.Location,
		StartTime:     start,
		EndTime:       end,
		IsPetFriendly: IsPetFriendly(e.PetFriendly),
	}
}

func (p *Parser) periods() []Period {
	if len(p.Periods) == 0 {
		return DefaultPeriods()
	}
	return p.Periods
}

func (p *Parser) newID() string {
	if p.NewID == nil {
		return uuid.NewString()
	}
	return p.NewID()
}

func dayIndex(days []trip.Day, n int) int {
	if n < 1 || n > len(days) {
		return -1
	}
	for i, d := range days {
		if d.DayNumber == n {
			return i
		}
	}
	return n - 1
}
