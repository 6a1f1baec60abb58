package automation

import (
	"context"
	"errors"
	"strings"
	"time"

	"dreamseller-controlplane/pkg/celengine"
	"dreamseller-controlplane/pkg/errutil"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Service struct {
	repo  Repository
	leads LeadRepository
	node  *snowflake.Node
}

type ServiceParams struct {
	fx.In
	Repository Repository
	Leads      LeadRepository `optional:"true"`
	Node       *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{repo: p.Repository, leads: p.Leads, node: p.Node}
}

// CreateRule validates the type/trigger pair and the optional CEL condition
// before anything is stored. A rule that would never fire is a creation
// error, not a silent no-op.
func (s *Service) CreateRule(ctx context.Context, params CreateRuleParams) (*Rule, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if params.UserID == "" {
		return nil, errutil.ValidationFailed("user_id is required", nil)
	}
	if params.Name == "" {
		return nil, errutil.ValidationFailed("name is required", nil)
	}

	ruleType := RuleType(params.Type)
	expected, ok := triggerForType[ruleType]
	if !ok {
		return nil, errutil.ValidationFailed("unknown rule type", nil,
			errutil.WithDetails(errutil.Detail{Field: "type", Message: params.Type}))
	}

	trigger := TriggerType(params.Trigger)
	if trigger != expected {
		return nil, errutil.ValidationFailed("trigger is not valid for this rule type", nil,
			errutil.WithDetails(
				errutil.Detail{Field: "trigger", Message: params.Trigger},
				errutil.Detail{Field: "expected", Message: string(expected)},
			))
	}

	if params.Condition != "" {
		env, err := celengine.GetOrBuildEnv(conditionAttrs(&Rule{}))
		if err != nil {
			return nil, errutil.Internal("failed to build condition environment", err)
		}
		if err := celengine.ValidateExpression(env, params.Condition); err != nil {
			return nil, errutil.ValidationFailed("condition is not a valid expression", err,
				errutil.WithDetails(errutil.Detail{Field: "condition", Message: err.Error()}))
		}
	}

	now := time.Now().UTC()
	rule := &Rule{
		ID:        s.node.Generate().String(),
		UserID:    params.UserID,
		Name:      params.Name,
		Type:      ruleType,
		Trigger:   trigger,
		Condition: params.Condition,
		Action:    params.Action,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Rule, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	rule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("rule not found", nil)
		}
		return nil, err
	}
	return rule, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Rule, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if userID == "" {
		return nil, errutil.ValidationFailed("user_id is required", nil)
	}
	return s.repo.ListByUser(ctx, userID)
}

// CreateLead stores an inbound prospect for the new-lead auto-responder to
// pick up on the next tick.
func (s *Service) CreateLead(ctx context.Context, params CreateLeadParams) (*Lead, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if s.leads == nil {
		return nil, errutil.NotImplemented("lead intake is not enabled", nil)
	}
	if params.UserID == "" {
		return nil, errutil.ValidationFailed("user_id is required", nil)
	}
	if !strings.Contains(params.Email, "@") {
		return nil, errutil.ValidationFailed("email is not valid", nil,
			errutil.WithDetails(errutil.Detail{Field: "email", Message: params.Email}))
	}

	lead := &Lead{
		ID:        s.node.Generate().String(),
		UserID:    params.UserID,
		Email:     params.Email,
		Status:    LeadStatusNew,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// SetStatus pauses or resumes a rule. The change takes effect from the next
// engine tick; an in-flight tick finishes with the snapshot it loaded.
func (s *Service) SetStatus(ctx context.Context, id, status string) (*Rule, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if status != StatusActive && status != StatusPaused {
		return nil, errutil.ValidationFailed("status must be active or paused", nil,
			errutil.WithDetails(errutil.Detail{Field: "status", Message: status}))
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("rule not found", nil)
		}
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}
