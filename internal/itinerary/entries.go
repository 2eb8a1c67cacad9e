package itinerary

import (
	"regexp"
	"strings"

	"github.com/suPer8Hu/pawtrip/internal/trip"
)

// Entry is one raw bullet extracted from a period section, before ids
// and times are assigned.
type Entry struct {
	Type        string
	Title       string
	Time        string
	Location    string
	Description string
	PetFriendly string
}

var (
	activityHeader = regexp.MustCompile(`(?i)^\s*[-*•+]\s*\**\s*Activity(?:\s*#?\d+)?\s*\**\s*:\s*\**\s*(.*)$`)
	mealHeader     = regexp.MustCompile(`(?i)^\s*[-*•+]\s*\**\s*(?:Meal|Breakfast|Lunch|Dinner)(?:\s*#?\d+)?\s*\**\s*:\s*\**\s*(.*)$`)
	fieldLine      = regexp.MustCompile(`(?i)^\s*(?:[-*•+]\s*)?\**\s*(Location|Description|Pet[- ]?friendly)\s*\**\s*:\s*\**\s*(.*)$`)
	bulletLine     = regexp.MustCompile(`^\s*[-*•+]`)
	titleWithTime  = regexp.MustCompile(`^(.*?)\s+[-–—]\s+(\d{1,2}:\d{2}(?:\s*[AaPp]\.?\s*[Mm]\.?)?)(?:\s*[-–—].*)?$`)
)

// ExtractActivities is pass A: "- Activity N: title [- time]" entries,
// in order of appearance.
func ExtractActivities(section string) []Entry {
	return extractEntries(section, activityHeader, trip.TypeActivity)
}

// ExtractMeals is pass B: Meal/Breakfast/Lunch/Dinner entries, in order
// of appearance.
func ExtractMeals(section string) []Entry {
	return extractEntries(section, mealHeader, trip.TypeRestaurant)
}

// ExtractEntries runs pass A then pass B over the same section and
// concatenates the results, activities before meals.
func ExtractEntries(section string) []Entry {
	return append(ExtractActivities(section), ExtractMeals(section)...)
}

func extractEntries(section string, header *regexp.Regexp, typ string) []Entry {
	var (
		out     []Entry
		cur     *Entry
		inDescr bool
	)
	flush := func() {
		if cur != nil {
			cur.Description = strings.TrimSpace(cur.Description)
			out = append(out, *cur)
		}
		cur = nil
		inDescr = false
	}

	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimRight(line, "\r")

		if m := header.FindStringSubmatch(line); m != nil {
			flush()
			title, at := splitTitle(m[1])
			cur = &Entry{Type: typ, Title: title, Time: at}
			continue
		}
		if activityHeader.MatchString(line) || mealHeader.MatchString(line) {
			// entry owned by the other pass
			flush()
			continue
		}
		if cur == nil {
			continue
		}
		if m := fieldLine.FindStringSubmatch(line); m != nil {
			value := cleanValue(m[2])
			inDescr = false
			switch strings.ToLower(m[1][:1]) {
			case "l":
				cur.Location = value
			case "d":
				cur.Description = value
				inDescr = true
			default:
				cur.PetFriendly = value
			}
			continue
		}
		if bulletLine.MatchString(line) {
			inDescr = false
			continue
		}
		if inDescr && strings.TrimSpace(line) != "" {
			if cur.Description != "" {
				cur.Description += "\n"
			}
			cur.Description += strings.TrimSpace(line)
		}
	}
	flush()
	return out
}

func splitTitle(raw string) (title, at string) {
	raw = cleanValue(raw)
	if m := titleWithTime.FindStringSubmatch(raw); m != nil {
		return cleanValue(m[1]), strings.TrimSpace(m[2])
	}
	return raw, ""
}

func cleanValue(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*_"))
}

// IsPetFriendly reports whether a Pet-friendly capture contains "yes".
func IsPetFriendly(capture string) bool {
	return strings.Contains(strings.ToLower(capture), "yes")
}
