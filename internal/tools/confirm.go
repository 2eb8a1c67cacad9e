package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/suPer8Hu/pawtrip/internal/itinerary"
	"github.com/suPer8Hu/pawtrip/internal/places"
	"github.com/suPer8Hu/pawtrip/internal/trip"
)

// Confirmer synthesizes a full itinerary when the user accepts the plan.
type Confirmer struct {
	dispatcher *Dispatcher
	parser     *itinerary.Parser
	defaults   trip.Defaults
	now        func() time.Time
}

func NewConfirmer(d *Dispatcher, p *itinerary.Parser, defaults trip.Defaults) *Confirmer {
	return &Confirmer{dispatcher: d, parser: p, defaults: defaults, now: time.Now}
}

// WithClock overrides the time source used to resolve travel dates.
func (c *Confirmer) WithClock(now func() time.Time) *Confirmer {
	c.now = now
	return c
}

// Triggered reports whether utterance confirms the itinerary: it says
// "yes" and either mentions the itinerary or the route is already known.
func Triggered(utterance string, slots trip.Slots) bool {
	u := strings.ToLower(utterance)
	if !strings.Contains(u, "yes") {
		return false
	}
	return strings.Contains(u, "itinerary") || (slots.Departure != "" && slots.Destination != "")
}

// Confirmation is everything needed to persist and announce a trip.
type Confirmation struct {
	Slots  trip.Slots
	Days   []trip.Day
	Places Result
	Vets   Result
	Tips   []string
}

// Confirm applies defaults, resolves places and vets, and builds the
// 5-day itinerary. It never fails.
func (c *Confirmer) Confirm(ctx context.Context, slots trip.Slots) Confirmation {
	filled := slots.WithDefaults(c.defaults)
	dest := lo.CoalesceOrEmpty(strings.TrimSpace(filled.Destination), "your destination")

	placeRes, _ := c.dispatcher.Invoke(ctx, PlaceSearch, Args{Destination: dest, Tags: filled.ActivityTags})
	vetRes, _ := c.dispatcher.Invoke(ctx, VetSearch, Args{Destination: dest})
	filled.Activities = append([]string(nil), placeRes.Names...)

	start, dated := itinerary.ParseTravelDate(filled.TravelDate, c.now())
	days := itinerary.Skeleton{
		Destination: dest,
		PetType:     filled.PetType,
		Places:      placeRes.Names,
		Vets:        vetRes.Names,
	}.Build(c.parser, start, dated)
	attachPlaces(days, placeRes.Places)

	return Confirmation{
		Slots:  filled,
		Days:   days,
		Places: placeRes,
		Vets:   vetRes,
		Tips:   generalTips(filled, vetRes.Names),
	}
}

// Summary is the text appended to the assistant reply.
func (cf Confirmation) Summary() string {
	var b strings.Builder
	route := cf.Slots.Destination
	if cf.Slots.Departure != "" && cf.Slots.Destination != "" {
		route = cf.Slots.Departure + " to " + cf.Slots.Destination
	}
	fmt.Fprintf(&b, "\n\n**Your %d-day pet-friendly itinerary is ready:** %s with your %s, %s.",
		len(cf.Days), route, cf.Slots.PetType, cf.Slots.TravelDate)
	b.WriteString(cf.Places.Fragment())
	b.WriteString(cf.Vets.Fragment())
	return b.String()
}

func attachPlaces(days []trip.Day, found []places.Place) {
	if len(found) == 0 {
		return
	}
	byName := lo.KeyBy(found, func(p places.Place) string { return strings.ToLower(p.Name) })
	for i := range days {
		for j := range days[i].Activities {
			a := &days[i].Activities[j]
			p, ok := byName[strings.ToLower(a.Title)]
			if !ok {
				continue
			}
			a.PlaceID = p.PlaceID
			if p.Address != "" {
				a.Location = p.Address
			}
			if p.Lat != 0 || p.Lng != 0 {
				a.Coordinates = &trip.Coordinates{Lat: p.Lat, Lng: p.Lng}
			}
		}
	}
}

func generalTips(s trip.Slots, vets []string) []string {
	tips := []string{
		fmt.Sprintf("Pack food, water and a travel bowl for your %s.", s.PetType),
		"Bring vaccination records and an up-to-date ID tag.",
		"Call ahead to confirm pet policies before each visit.",
	}
	if len(vets) > 0 {
		tips = append(tips, "Vets near "+lo.CoalesceOrEmpty(s.Destination, "your destination")+": "+strings.Join(vets, ", "))
	}
	return tips
}
