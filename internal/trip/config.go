package trip

import "slices"

// Vocabulary is the fixed keyword set the tracker matches against.
// Values returned by DefaultVocabulary are fresh copies; callers may not
// share mutations through them.
type Vocabulary struct {
	Activities []string
	Months     []string
}

func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Activities: []string{
			"relaxing", "adventure", "cultural", "romantic",
			"family", "luxury", "budget", "solo",
			"historical", "culinary", "wellness", "eco",
		},
		Months: []string{
			"january", "february", "march", "april", "may", "june",
			"july", "august", "september", "october", "november", "december",
		},
	}
}

func (v Vocabulary) IsActivity(token string) bool {
	return slices.Contains(v.Activities, token)
}

func (v Vocabulary) IsMonth(token string) bool {
	return slices.Contains(v.Months, token)
}

// Defaults are applied at itinerary confirmation only.
type Defaults struct {
	PetType      string
	TravelDate   string
	ActivityTags []string
}

func DefaultDefaults() Defaults {
	return Defaults{
		PetType:      "dog",
		TravelDate:   "next month",
		ActivityTags: []string{"family", "adventure"},
	}
}

type Field string

const (
	FieldRoute        Field = "route"
	FieldPetType      Field = "petType"
	FieldTravelDate   Field = "travelDate"
	FieldActivityTags Field = "activityTags"
)

type Policy int

const (
	// FirstWins keeps the first extracted value for the rest of the conversation.
	FirstWins Policy = iota
	// ReplaceOnMatch overwrites the field every time an utterance matches.
	ReplaceOnMatch
)

func (p Policy) String() string {
	switch p {
	case FirstWins:
		return "first-wins"
	case ReplaceOnMatch:
		return "replace-on-match"
	default:
		return "unknown"
	}
}

type Policies map[Field]Policy

// DefaultPolicies: every field is first-wins except activity tags.
func DefaultPolicies() Policies {
	return Policies{
		FieldRoute:        FirstWins,
		FieldPetType:      FirstWins,
		FieldTravelDate:   FirstWins,
		FieldActivityTags: ReplaceOnMatch,
	}
}

// Of returns the policy for f, defaulting to FirstWins.
func (p Policies) Of(f Field) Policy {
	if pol, ok := p[f]; ok {
		return pol
	}
	return FirstWins
}
