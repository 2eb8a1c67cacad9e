package trip

// Slots is the in-progress trip filled in over a conversation.
type Slots struct {
	Departure    string   `json:"departure"`
	Destination  string   `json:"destination"`
	PetType      string   `json:"petType"`
	TravelDate   string   `json:"travelDate"`
	ActivityTags []string `json:"activityTags"`
	Activities   []string `json:"activities"`
}

// Clone returns a deep copy.
func (s Slots) Clone() Slots {
	out := s
	out.ActivityTags = append([]string(nil), s.ActivityTags...)
	out.Activities = append([]string(nil), s.Activities...)
	return out
}

// WithDefaults fills the fields still empty at confirmation time.
// The receiver is not modified.
func (s Slots) WithDefaults(d Defaults) Slots {
	out := s.Clone()
	if out.PetType == "" {
		out.PetType = d.PetType
	}
	if out.TravelDate == "" {
		out.TravelDate = d.TravelDate
	}
	if len(out.ActivityTags) == 0 {
		out.ActivityTags = append([]string(nil), d.ActivityTags...)
	}
	return out
}

const (
	TypeActivity      = "activity"
	TypeRestaurant    = "restaurant"
	TypeFlight        = "flight"
	TypeTransfer      = "transfer"
	TypeAccommodation = "accommodation"
	TypeMeal          = "meal"
	TypePlaceholder   = "placeholder"
	TypePreparation   = "preparation"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Activity struct {
	ID            string       `json:"id"`
	Type          string       `json:"type"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Location      string       `json:"location"`
	StartTime     string       `json:"startTime"`
	EndTime       string       `json:"endTime"`
	IsPetFriendly bool         `json:"isPetFriendly"`
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
	PlaceID       string       `json:"placeId,omitempty"`
}

type Day struct {
	DayNumber  int        `json:"day"`
	Date       string     `json:"date"`
	City       string     `json:"city"`
	Activities []Activity `json:"activities"`
}

// CloneDays copies the day slice and each day's activity list.
func CloneDays(days []Day) []Day {
	if days == nil {
		return nil
	}
	out := make([]Day, len(days))
	for i, d := range days {
		out[i] = d
		if d.Activities != nil {
			out[i].Activities = make([]Activity, len(d.Activities))
			copy(out[i].Activities, d.Activities)
		}
	}
	return out
}
