package metrics

import (
	"context"

	"github.com/segal-development/nurtureflow/pkg/schema"
)

// Rule maps a jq expression to the counter it feeds. A boolean result
// increments the counter by one, a numeric result adds its value, anything
// else is ignored.
type Rule struct {
	Metric string
	Query  string
}

// DefaultRules matches the event naming most ESP webhooks use.
func DefaultRules() []Rule {
	return []Rule{
		{Metric: schema.ParamViews, Query: `.event == "open"`},
		{Metric: schema.ParamClicks, Query: `.event == "click"`},
		{Metric: schema.ParamBounces, Query: `.event == "bounce"`},
		{Metric: schema.ParamUnsubscribes, Query: `.event == "unsubscribe"`},
	}
}

// Extractor accumulates engagement counters from a stream of webhook
// events. Safe for concurrent use.
type Extractor struct {
	engine *JQEngine
	rules  []Rule
}

// NewExtractor creates an Extractor. With no rules it uses DefaultRules.
func NewExtractor(rules ...Rule) *Extractor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Extractor{
		engine: NewJQEngine(),
		rules:  rules,
	}
}

// Accumulate folds the events into a counter map keyed by metric name.
// Every rule's metric is present in the result, zero when never matched.
func (x *Extractor) Accumulate(ctx context.Context, events []map[string]any) (map[string]any, error) {
	counters := make(map[string]any, len(x.rules))
	for _, r := range x.rules {
		counters[r.Metric] = 0
	}

	for _, event := range events {
		for _, r := range x.rules {
			out, err := x.engine.Evaluate(ctx, r.Query, event)
			if err != nil {
				return nil, err
			}
			counters[r.Metric] = counters[r.Metric].(int) + delta(out)
		}
	}
	return counters, nil
}

// delta converts a rule result into a counter increment.
func delta(out any) int {
	switch v := out.(type) {
	case bool:
		if v {
			return 1
		}
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
