package chat

import (
	"fmt"
	"strings"

	"github.com/suPer8Hu/pawtrip/internal/ai"
	"github.com/suPer8Hu/pawtrip/internal/trip"
)

const fallbackReply = "Sorry, I couldn't come up with an answer just now. Could you tell me more about your trip?"

const headingFormat = `Format every itinerary exactly like this:
DAY 1: <short theme>
MORNING
- Activity 1: <title> - <h:mm AM/PM>
  Location: <place>
  Description: <one or two sentences>
  Pet-friendly: <Yes/No and any conditions>
- Lunch: <restaurant> - <h:mm AM/PM>
  Location: <place>
  Pet-friendly: <Yes/No>
AFTERNOON
...
EVENING
...`

func systemPrompt(s trip.Slots) string {
	var b strings.Builder
	b.WriteString("You are PawTrip, a travel planner for people travelling with pets. ")
	b.WriteString("Ask for whatever is still unknown (departure, destination, pet, travel date, trip style) one question at a time. ")
	b.WriteString("Use the placeSearch, vetSearch and hotelSearch tools when the traveller asks for places, vets or hotels. ")
	b.WriteString("When departure and destination are known, offer to build the itinerary and ask the traveller to answer yes.\n\n")
	b.WriteString("Known trip details:\n")
	fmt.Fprintf(&b, "- departure: %s\n", orUnknown(s.Departure))
	fmt.Fprintf(&b, "- destination: %s\n", orUnknown(s.Destination))
	fmt.Fprintf(&b, "- pet: %s\n", orUnknown(s.PetType))
	fmt.Fprintf(&b, "- travel date: %s\n", orUnknown(s.TravelDate))
	fmt.Fprintf(&b, "- trip style: %s\n", orUnknown(strings.Join(s.ActivityTags, ", ")))
	b.WriteString("\n")
	b.WriteString(headingFormat)
	return b.String()
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return "unknown"
	}
	return v
}

// window keeps the last n messages, dropping system messages sent by
// the client since the server supplies its own.
func window(messages []ai.Message, n int) []ai.Message {
	out := make([]ai.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == ai.RoleSystem {
			continue
		}
		out = append(out, m)
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

func itineraryPrompt(req ItineraryRequest) []ai.Message {
	pet := req.Trip.PetDetails
	petDesc := strings.TrimSpace(strings.Join([]string{pet.Size, pet.Breed, pet.Type}, " "))
	if petDesc == "" {
		petDesc = "pet"
	}
	if pet.Name != "" {
		petDesc = fmt.Sprintf("%s named %s", petDesc, pet.Name)
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Plan a %d-day pet-friendly trip to %s for a traveller with a %s.\n",
		len(req.Trip.Days), req.Trip.Destination, petDesc)
	for _, d := range req.Trip.Days {
		if d.Date != "" || d.City != "" {
			fmt.Fprintf(&user, "Day %d: %s %s\n", d.DayNumber, d.Date, d.City)
		}
	}
	user.WriteString("Give every day a MORNING, AFTERNOON and EVENING section.")

	return []ai.Message{
		{Role: ai.RoleSystem, Content: "You are an expert pet-friendly travel planner.\n\n" + headingFormat},
		{Role: ai.RoleUser, Content: user.String()},
	}
}
