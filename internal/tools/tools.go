package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/suPer8Hu/pawtrip/internal/places"
)

const (
	PlaceSearch = "placeSearch"
	VetSearch   = "vetSearch"
	HotelSearch = "hotelSearch"
)

// Args are the decoded tool arguments.
type Args struct {
	Destination string   `json:"destination"`
	Tags        []string `json:"tags,omitempty"`
}

// Result is what a tool resolved. Fallback is set when nothing usable
// was found and Names holds the fixed substitute; Err is the provider
// failure behind a fallback, nil when the search merely came back empty.
type Result struct {
	Tool     string
	Label    string
	Icon     string
	Names    []string
	Places   []places.Place
	Fallback bool
	Err      error
}

var errNoSearcher = errors.New("tools: no place searcher configured")

// Fragment formats the result for appending to the assistant reply.
func (r Result) Fragment() string {
	if len(r.Names) == 0 {
		return ""
	}
	items := lo.Map(r.Names, func(n string, _ int) string { return r.Icon + " " + n })
	return fmt.Sprintf("\n\n**%s:** %s", r.Label, strings.Join(items, ", "))
}

// Tool is one enrichment capability the model may call. Invoke never
// fails; provider errors are replaced with a fallback result.
type Tool interface {
	Name() string
	Description() string
	Schema() map[string]any
	Invoke(ctx context.Context, args Args) Result
}

type searchTool struct {
	name        string
	description string
	label       string
	icon        string
	limit       int
	fallback    string
	query       func(Args) string
	schema      map[string]any
	searcher    places.Searcher
}

func (t *searchTool) Name() string           { return t.name }
func (t *searchTool) Description() string    { return t.description }
func (t *searchTool) Schema() map[string]any { return t.schema }

func (t *searchTool) Invoke(ctx context.Context, args Args) Result {
	res := Result{Tool: t.name, Label: t.label, Icon: t.icon}
	if t.searcher == nil {
		res.Err = errNoSearcher
		return t.fallbackResult(res)
	}
	q := t.query(args)
	found, err := t.searcher.Search(ctx, q, t.limit)
	if err != nil {
		slog.Warn("enrichment search failed, using fallback", "tool", t.name, "query", q, "err", err)
		res.Err = err
		return t.fallbackResult(res)
	}
	found = lo.Filter(found, func(p places.Place, _ int) bool { return strings.TrimSpace(p.Name) != "" })
	if len(found) == 0 {
		return t.fallbackResult(res)
	}
	if len(found) > t.limit {
		found = found[:t.limit]
	}
	res.Places = found
	res.Names = lo.Map(found, func(p places.Place, _ int) string { return p.Name })
	return res
}

func (t *searchTool) fallbackResult(res Result) Result {
	res.Names = []string{t.fallback}
	res.Fallback = true
	return res
}

func destinationSchema(withTags bool) map[string]any {
	props := map[string]any{
		"destination": map[string]any{
			"type":        "string",
			"minLength":   1,
			"description": "City or area the traveller is visiting",
		},
	}
	if withTags {
		props["tags"] = map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Trip style keywords such as family or adventure",
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   []any{"destination"},
	}
}

// NewPlaceSearch finds up to three pet-friendly places matching the tags.
func NewPlaceSearch(s places.Searcher) Tool {
	return &searchTool{
		name:        PlaceSearch,
		description: "Find pet-friendly places to visit at the destination that match the trip style tags.",
		label:       "Pet-friendly places",
		icon:        "📍",
		limit:       3,
		fallback:    "Explore local parks",
		query: func(a Args) string {
			return strings.Join(strings.Fields(fmt.Sprintf("pet-friendly %s in %s", strings.Join(a.Tags, " "), a.Destination)), " ")
		},
		schema:   destinationSchema(true),
		searcher: s,
	}
}

// NewVetSearch finds up to two veterinary clinics near the destination.
func NewVetSearch(s places.Searcher) Tool {
	return &searchTool{
		name:        VetSearch,
		description: "Find veterinary clinics near the destination.",
		label:       "Nearby vets",
		icon:        "🏥",
		limit:       2,
		fallback:    "Local Vet Clinic",
		query:       func(a Args) string { return "vet clinic near " + a.Destination },
		schema:      destinationSchema(false),
		searcher:    s,
	}
}

// NewHotelSearch finds up to two pet-friendly hotels near the destination.
func NewHotelSearch(s places.Searcher) Tool {
	return &searchTool{
		name:        HotelSearch,
		description: "Find pet-friendly hotels near the destination.",
		label:       "Pet-friendly hotels",
		icon:        "🏨",
		limit:       2,
		fallback:    "Pet-Friendly Hotel",
		query:       func(a Args) string { return "pet-friendly hotels near " + a.Destination },
		schema:      destinationSchema(false),
		searcher:    s,
	}
}
