package itinerary

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/suPer8Hu/pawtrip/internal/trip"
)

// SkeletonDays is the fixed length of a synthesized itinerary.
const SkeletonDays = 5

// Skeleton describes the confirmed trip a 5-day itinerary is built for.
type Skeleton struct {
	Destination string
	PetType     string
	Places      []string
	Vets        []string
}

// Text renders the skeleton in the same heading vocabulary the parser
// reads: Day 1 arrival and lodging, one place per day on days 2-4 with a
// filler when fewer than three places are known, day 5 departure with
// the vet list.
func (s Skeleton) Text() string {
	dest := s.Destination
	pet := s.PetType
	if pet == "" {
		pet = "pet"
	}
	var b strings.Builder

	fmt.Fprintf(&b, "DAY 1: Arrival in %s\n", dest)
	b.WriteString("MORNING\n")
	writeEntry(&b, 1, "Arrive in "+dest, "10:00 AM", dest,
		fmt.Sprintf("Travel day. Let your %s stretch and settle in.", pet))
	b.WriteString("AFTERNOON\n")
	writeEntry(&b, 1, "Check in to pet-friendly lodging", "3:00 PM", dest,
		"Lodging to be confirmed.")

	for day := 2; day <= 4; day++ {
		name := fmt.Sprintf("Free time to explore %s with your %s", dest, pet)
		loc := dest
		if i := day - 2; i < len(s.Places) {
			name = s.Places[i]
			loc = fmt.Sprintf("%s, %s", s.Places[i], dest)
		}
		fmt.Fprintf(&b, "DAY %d: Exploring %s\n", day, dest)
		b.WriteString("MORNING\n")
		writeEntry(&b, 1, name, "10:00 AM", loc, fmt.Sprintf("A pet-friendly outing for you and your %s.", pet))
	}

	b.WriteString("DAY 5: Departure\n")
	b.WriteString("MORNING\n")
	vets := "No vet clinics found nearby."
	if len(s.Vets) > 0 {
		vets = "Nearby vets: " + strings.Join(s.Vets, ", ")
	}
	writeEntry(&b, 1, "Pack up and depart "+dest, "10:00 AM", dest, vets)
	return b.String()
}

func writeEntry(b *strings.Builder, n int, title, at, location, description string) {
	fmt.Fprintf(b, "- Activity %d: %s - %s\n", n, title, at)
	fmt.Fprintf(b, "  Location: %s\n", location)
	fmt.Fprintf(b, "  Description: %s\n", description)
	b.WriteString("  Pet-friendly: Yes\n")
}

// Build parses the skeleton text onto SkeletonDays empty days and tags
// the arrival, lodging and departure entries with their types. start is
// used for consecutive ISO dates when ok is true.
func (s Skeleton) Build(p *Parser, start time.Time, ok bool) []trip.Day {
	days := ExpandDays(SkeletonDays, s.Destination, start, ok)
	days = p.Parse(s.Text(), days)

	setType := func(day, idx int, typ string) {
		if acts := days[day].Activities; idx < len(acts) {
			acts[idx].Type = typ
		}
	}
	setType(0, 0, trip.TypeTransfer)
	setType(0, 1, trip.TypePlaceholder)
	setType(SkeletonDays-1, 0, trip.TypeTransfer)
	return days
}

// ExpandDays returns n empty days numbered from 1, each in city.
func ExpandDays(n int, city string, start time.Time, dated bool) []trip.Day {
	days := make([]trip.Day, n)
	for i := range days {
		days[i] = trip.Day{DayNumber: i + 1, City: city, Activities: []trip.Activity{}}
		if dated {
			days[i].Date = start.AddDate(0, 0, i).Format("2006-01-02")
		}
	}
	return days
}

var ordinalSuffix = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)\b`)

var dateLayouts = []string{
	"2006-01-02",
	"January 2 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2",
	"Jan 2",
	"2 January 2006",
	"2 January",
}

// ParseTravelDate reads a calendar date out of a travel-date slot such
// as "june 5" or "2026-06-05". Dates without a year fall on the next
// occurrence on or after now.
func ParseTravelDate(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(ordinalSuffix.ReplaceAllString(s, "$1"))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if strings.Contains(layout, "2006") {
			return t, true
		}
		t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if t.Before(today) {
			t = t.AddDate(1, 0, 0)
		}
		return t, true
	}
	return time.Time{}, false
}
