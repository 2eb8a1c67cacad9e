package trip

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
	"github.com/suPer8Hu/pawtrip/internal/ai"
)

var (
	tokenSep    = regexp.MustCompile(`[, ]+`)
	fromWord    = regexp.MustCompile(`(?i)\bfrom\s+`)
	withClause  = regexp.MustCompile(`(?i)\bwith\b\s*(.*?)(?:\s+\bon\b|$)`)
	onClause    = regexp.MustCompile(`\bon\b\s*(.*)$`)
	hasWordWith = regexp.MustCompile(`\bwith\b`)
	hasWordOn   = regexp.MustCompile(`\bon\b`)
)

const punct = " \t.,!?;:"

// Tracker turns a message history into trip slots. It holds only
// immutable configuration and is safe for concurrent use.
type Tracker struct {
	vocab    Vocabulary
	policies Policies
	rules    []rule
}

type rule struct {
	field   Field
	isSet   func(Slots) bool
	extract func(u utterance, v Vocabulary) (apply func(*Slots), ok bool)
}

type utterance struct {
	raw    string
	folded string
}

func NewTracker(vocab Vocabulary, policies Policies) *Tracker {
	return &Tracker{
		vocab:    vocab,
		policies: policies,
		rules: []rule{
			{field: FieldRoute, isSet: func(s Slots) bool { return s.Departure != "" }, extract: extractRoute},
			{field: FieldPetType, isSet: func(s Slots) bool { return s.PetType != "" }, extract: extractPetType},
			{field: FieldTravelDate, isSet: func(s Slots) bool { return s.TravelDate != "" }, extract: extractTravelDate},
			{field: FieldActivityTags, isSet: func(s Slots) bool { return len(s.ActivityTags) > 0 }, extract: extractActivityTags},
		},
	}
}

func DefaultTracker() *Tracker {
	return NewTracker(DefaultVocabulary(), DefaultPolicies())
}

// Update evaluates every user message of history, oldest first, against
// the current slots and returns the result. current is not modified.
func (t *Tracker) Update(history []ai.Message, current Slots) Slots {
	out := current.Clone()
	for _, m := range history {
		if m.Role != ai.RoleUser {
			continue
		}
		u := utterance{raw: m.Content, folded: strings.ToLower(m.Content)}
		for _, r := range t.rules {
			if t.policies.Of(r.field) == FirstWins && r.isSet(out) {
				continue
			}
			if apply, ok := r.extract(u, t.vocab); ok {
				apply(&out)
			}
		}
	}
	return out
}

// extractRoute splits the part before the first " with " on its last
// " to ". A "from" on the left narrows the departure to what follows it,
// so "I want to go from Paris to Rome" reads as Paris -> Rome.
func extractRoute(u utterance, _ Vocabulary) (func(*Slots), bool) {
	if !strings.Contains(u.folded, " to ") {
		return nil, false
	}
	text := u.raw
	if len(text) != len(u.folded) {
		// case folding changed byte offsets; fall back to folded text
		text = u.folded
	}

	head := text
	if i := strings.Index(u.folded, " with "); i >= 0 {
		head = text[:i]
	}
	foldedHead := u.folded[:len(head)]

	var left, right string
	if i := strings.LastIndex(foldedHead, " to "); i >= 0 {
		left, right = head[:i], head[i+len(" to "):]
	} else {
		i := strings.Index(u.folded, " to ")
		left, right = text[:i], text[i+len(" to "):]
		if j := strings.Index(strings.ToLower(right), " with "); j >= 0 {
			right = right[:j]
		}
	}

	if locs := fromWord.FindAllStringIndex(left, -1); len(locs) > 0 {
		left = left[locs[len(locs)-1][1]:]
	}
	departure := strings.Trim(left, punct)
	destination := strings.Trim(right, punct)
	if departure == "" || destination == "" {
		return nil, false
	}
	return func(s *Slots) {
		s.Departure = departure
		s.Destination = destination
	}, true
}

func extractPetType(u utterance, _ Vocabulary) (func(*Slots), bool) {
	if !hasWordWith.MatchString(u.folded) {
		return nil, false
	}
	m := withClause.FindStringSubmatch(u.raw)
	if m == nil {
		return nil, false
	}
	pet := strings.Trim(m[1], punct)
	if pet == "" {
		return nil, false
	}
	return func(s *Slots) { s.PetType = pet }, true
}

func extractTravelDate(u utterance, v Vocabulary) (func(*Slots), bool) {
	if hasWordOn.MatchString(u.folded) {
		m := onClause.FindStringSubmatch(u.folded)
		if m != nil {
			if date := strings.Trim(m[1], punct); date != "" {
				return func(s *Slots) { s.TravelDate = date }, true
			}
		}
	}
	if lo.SomeBy(tokens(u.folded), v.IsMonth) {
		date := strings.Trim(u.folded, punct)
		return func(s *Slots) { s.TravelDate = date }, true
	}
	return nil, false
}

func extractActivityTags(u utterance, v Vocabulary) (func(*Slots), bool) {
	toks := tokens(u.folded)
	matched := lo.Uniq(lo.Filter(toks, func(tok string, _ int) bool { return v.IsActivity(tok) }))
	if !strings.Contains(u.folded, "yes") && len(matched) == 0 {
		return nil, false
	}
	return func(s *Slots) { s.ActivityTags = append([]string{}, matched...) }, true
}

func tokens(folded string) []string {
	parts := tokenSep.Split(strings.TrimSpace(folded), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(p, punct); p != "" {
			out = append(out, p)
		}
	}
	return out
}
