package predicate

import (
	"context"
	"fmt"
	"strconv"

	"github.com/segal-development/nurtureflow/pkg/schema"
)

// Evaluator routes a condition to the engine that can decide it: built-in
// condition types become Expr comparisons over the metric environment,
// custom conditions run their CEL check_expression.
type Evaluator struct {
	expr *ExprEngine
	cel  *CELEngine
}

// NewEvaluator creates an Evaluator with both engines ready.
func NewEvaluator() (*Evaluator, error) {
	celEngine, err := NewCELEngine()
	if err != nil {
		return nil, err
	}
	return &Evaluator{
		expr: NewExprEngine(),
		cel:  celEngine,
	}, nil
}

// EvaluateCondition decides a condition for one prospect. metrics maps
// engagement counter names to numbers; prospect and flow feed custom
// expressions only.
func (ev *Evaluator) EvaluateCondition(ctx context.Context, cond schema.ConditionData, metrics map[string]any, prospect map[string]any, flow map[string]any) (bool, error) {
	if cond.ConditionType == schema.CondCustom {
		out, err := ev.cel.Evaluate(ctx, cond.CheckExpression, map[string]any{
			"metrics":  normalizeMetrics(metrics),
			"prospect": prospect,
			"flow":     flow,
		})
		if err != nil {
			return false, err
		}
		return coerceBool(out, cond.ID)
	}

	out, err := ev.expr.Evaluate(ctx, BuildPredicate(cond), normalizeMetrics(metrics))
	if err != nil {
		return false, err
	}
	return coerceBool(out, cond.ID)
}

// BuildPredicate renders a condition's check fields as Expr source, e.g.
// (Clicks > 3). Numeric check values are emitted bare, everything else is
// quoted.
func BuildPredicate(cond schema.ConditionData) string {
	param := cond.CheckParam
	if param == "" {
		param = schema.ParamViews
	}
	value := cond.CheckValue
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		value = strconv.Quote(value)
	}
	return fmt.Sprintf("%s %s %s", param, cond.CheckOperator, value)
}

// normalizeMetrics fills the four standard counters with zero so predicates
// never compare against a missing variable.
func normalizeMetrics(metrics map[string]any) map[string]any {
	out := make(map[string]any, len(metrics)+4)
	for _, p := range []string{schema.ParamViews, schema.ParamClicks, schema.ParamBounces, schema.ParamUnsubscribes} {
		out[p] = 0
	}
	for k, v := range metrics {
		out[k] = v
	}
	return out
}

func coerceBool(out any, conditionID string) (bool, error) {
	b, ok := out.(bool)
	if !ok {
		return false, schema.NewErrorf(schema.ErrCodeExecution,
			"condition did not evaluate to a boolean, got %T", out).
			WithNode(conditionID)
	}
	return b, nil
}
