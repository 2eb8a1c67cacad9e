package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/suPer8Hu/pawtrip/internal/ai"
	"github.com/suPer8Hu/pawtrip/internal/places"
	"github.com/suPer8Hu/pawtrip/internal/trip"
)

// Dispatcher runs the tool the model asked for. It never fails a turn:
// unknown tools produce no output and invalid arguments produce the
// tool's fallback.
type Dispatcher struct {
	order   []string
	tools   map[string]Tool
	schemas map[string]*jsonschema.Schema
}

func NewDispatcher(tools ...Tool) (*Dispatcher, error) {
	d := &Dispatcher{
		tools:   make(map[string]Tool, len(tools)),
		schemas: make(map[string]*jsonschema.Schema, len(tools)),
	}
	for _, t := range tools {
		compiled, err := compileSchema(t.Name(), t.Schema())
		if err != nil {
			return nil, err
		}
		d.order = append(d.order, t.Name())
		d.tools[t.Name()] = t
		d.schemas[t.Name()] = compiled
	}
	return d, nil
}

// NewDefaultDispatcher wires placeSearch, vetSearch and hotelSearch to s.
func NewDefaultDispatcher(s places.Searcher) (*Dispatcher, error) {
	return NewDispatcher(NewPlaceSearch(s), NewVetSearch(s), NewHotelSearch(s))
}

func compileSchema(name string, raw map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("tool %s: marshal schema: %w", name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("tool %s: parse schema: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	url := name + ".json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("tool %s: add schema: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("tool %s: compile schema: %w", name, err)
	}
	return compiled, nil
}

// Specs describes the tools to the model, in registration order.
func (d *Dispatcher) Specs() []ai.ToolSpec {
	out := make([]ai.ToolSpec, 0, len(d.order))
	for _, name := range d.order {
		t := d.tools[name]
		out = append(out, ai.ToolSpec{Name: t.Name(), Description: t.Description(), Parameters: t.Schema()})
	}
	return out
}

// Invoke runs a tool directly with already-validated arguments.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args Args) (Result, bool) {
	t, ok := d.tools[name]
	if !ok {
		return Result{}, false
	}
	return t.Invoke(ctx, args), true
}

// Dispatch executes call and returns the formatted fragment. Missing
// destination and tags are taken from slots.
func (d *Dispatcher) Dispatch(ctx context.Context, call ai.ToolCall, slots trip.Slots) string {
	res, ok := d.Resolve(ctx, call, slots)
	if !ok {
		return ""
	}
	return res.Fragment()
}

// Resolve is Dispatch without formatting.
func (d *Dispatcher) Resolve(ctx context.Context, call ai.ToolCall, slots trip.Slots) (Result, bool) {
	t, ok := d.tools[call.Name]
	if !ok {
		slog.Warn("model requested unknown tool", "tool", call.Name)
		return Result{}, false
	}

	raw := map[string]any{}
	if s := strings.TrimSpace(call.Arguments); s != "" {
		if err := json.Unmarshal([]byte(s), &raw); err != nil || raw == nil {
			slog.Warn("tool arguments are not a json object", "tool", call.Name, "err", err)
			raw = map[string]any{}
		}
	}
	if v, _ := raw["destination"].(string); strings.TrimSpace(v) == "" && slots.Destination != "" {
		raw["destination"] = slots.Destination
	}
	props, _ := t.Schema()["properties"].(map[string]any)
	if _, wantsTags := props["tags"]; wantsTags {
		if s, isString := raw["tags"].(string); isString {
			// some models send "a, b" instead of an array
			tags := []any{}
			for _, tag := range strings.Split(s, ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					tags = append(tags, tag)
				}
			}
			raw["tags"] = tags
		}
		if _, has := raw["tags"]; !has && len(slots.ActivityTags) > 0 {
			tags := make([]any, 0, len(slots.ActivityTags))
			for _, tag := range slots.ActivityTags {
				tags = append(tags, tag)
			}
			raw["tags"] = tags
		}
	}

	if err := d.schemas[call.Name].Validate(raw); err != nil {
		slog.Warn("tool arguments failed validation, using fallback", "tool", call.Name, "err", err)
		return fallbackFor(t)
	}

	args, err := decodeArgs(raw)
	if err != nil {
		slog.Warn("tool arguments could not be decoded, using fallback", "tool", call.Name, "err", err)
		return fallbackFor(t)
	}
	args.Destination = strings.TrimSpace(args.Destination)
	return t.Invoke(ctx, args), true
}

func decodeArgs(raw map[string]any) (Args, error) {
	var args Args
	b, err := json.Marshal(raw)
	if err != nil {
		return args, err
	}
	err = json.Unmarshal(b, &args)
	return args, err
}

// fallbackFor returns the fixed substitute of search tools; other tools
// have none and produce no output.
func fallbackFor(t Tool) (Result, bool) {
	if st, ok := t.(*searchTool); ok {
		return st.fallbackResult(Result{Tool: st.name, Label: st.label, Icon: st.icon}), true
	}
	return Result{}, false
}
