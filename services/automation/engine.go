package automation

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"dreamseller-controlplane/pkg/celengine"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentRules bounds how many rules a single tick runs at once.
const maxConcurrentRules = 4

// Handler executes one rule of a single type. Handlers are registered in a
// typed table; a rule whose type has no handler is a dispatch error, which
// cannot happen for rules that passed creation validation.
type Handler interface {
	Type() RuleType
	Handle(ctx context.Context, rule Rule) error
}

// Engine runs every active rule once per tick. Ticks never overlap: a tick
// that fires while the previous one is still running is skipped.
type Engine struct {
	repo     Repository
	handlers map[RuleType]Handler

	inFlight atomic.Bool

	// test seam, defaults to time.Now
	now func() time.Time
}

type EngineParams struct {
	fx.In
	Repository Repository
	Handlers   []Handler
}

func NewEngine(p EngineParams) *Engine {
	handlers := make(map[RuleType]Handler, len(p.Handlers))
	for _, h := range p.Handlers {
		handlers[h.Type()] = h
	}

	return &Engine{
		repo:     p.Repository,
		handlers: handlers,
		now:      time.Now,
	}
}

// Tick loads the active rules and dispatches each to its handler. One rule's
// failure never stops the pass. Returns the number of rules that ran
// successfully.
func (e *Engine) Tick(ctx context.Context) (int, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		zap.L().Warn("automation tick still running, skipping this interval")
		return 0, nil
	}
	defer e.inFlight.Store(false)

	span := trace.SpanFromContext(ctx)
	defer span.End()

	rules, err := e.repo.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	var succeeded atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRules)
	for _, rule := range rules {
		rule := rule
		g.Go(func() error {
			if err := e.runRule(gctx, rule); err != nil {
				zap.L().Warn("automation rule failed",
					zap.String("rule_id", rule.ID),
					zap.String("type", string(rule.Type)),
					zap.Error(err),
				)
				// rule failures are isolated, never abort the pass
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	zap.L().Info("automation tick finished",
		zap.Int("rules", len(rules)),
		zap.Int64("succeeded", succeeded.Load()),
	)

	return int(succeeded.Load()), nil
}

func (e *Engine) runRule(ctx context.Context, rule Rule) error {
	pass, err := e.conditionPasses(rule)
	if err != nil {
		// an unevaluable condition is a failed execution, not a skip
		now := e.now().UTC()
		if recErr := e.repo.RecordFailure(ctx, rule.ID, now); recErr != nil {
			zap.L().Error("failed to record rule failure", zap.String("rule_id", rule.ID), zap.Error(recErr))
		}
		return err
	}
	if !pass {
		return nil
	}

	handler, ok := e.handlers[rule.Type]
	if !ok {
		return fmt.Errorf("no handler registered for rule type %q", rule.Type)
	}

	now := e.now().UTC()
	if err := handler.Handle(ctx, rule); err != nil {
		if recErr := e.repo.RecordFailure(ctx, rule.ID, now); recErr != nil {
			zap.L().Error("failed to record rule failure", zap.String("rule_id", rule.ID), zap.Error(recErr))
		}
		return err
	}

	return e.repo.RecordSuccess(ctx, rule.ID, now)
}

// conditionPasses evaluates the optional CEL condition. Empty conditions
// always pass.
func (e *Engine) conditionPasses(rule Rule) (bool, error) {
	if rule.Condition == "" {
		return true, nil
	}

	attrs := conditionAttrs(&rule)
	env, err := celengine.GetOrBuildEnv(attrs)
	if err != nil {
		return false, err
	}

	return celengine.Evaluate(env, rule.Condition, attrs)
}

// conditionAttrs is the fixed variable set conditions may reference. The
// shape must stay stable; the CEL environment is cached on it. The rule type
// is exposed as rule_type because `type` is reserved by CEL.
func conditionAttrs(rule *Rule) map[string]any {
	now := time.Now().UTC()
	return map[string]any{
		"executions": rule.Executions,
		"failures":   rule.Failures,
		"rule_type":  string(rule.Type),
		"trigger":    string(rule.Trigger),
		"action":     rule.Action,
		"hour":       int64(now.Hour()),
		"weekday":    int64(now.Weekday()),
	}
}
