package automation

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dreamseller-controlplane/pkg/errutil"
	"dreamseller-controlplane/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) (*Service, Repository) {
	t.Helper()

	db := testutil.NewTestDB(t, &Rule{}, &Lead{})
	repo := NewRepository(db)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParams{Repository: repo, Leads: NewLeadRepository(db), Node: node})
	return svc, repo
}

func TestService_CreateRule(t *testing.T) {
	svc, _ := newTestService(t)

	rule, err := svc.CreateRule(context.Background(), CreateRuleParams{
		UserID:  "user-1",
		Name:    "Auto-respond to leads",
		Type:    "email",
		Trigger: "new_lead",
		Action:  "welcome-template",
	})
	require.NoError(t, err)
	require.Equal(t, TypeEmail, rule.Type)
	require.Equal(t, TriggerNewLead, rule.Trigger)
	require.Equal(t, StatusActive, rule.Status)
	require.Zero(t, rule.Executions)
	require.Nil(t, rule.LastRun)
}

func TestService_CreateRuleRejectsUnknownTrigger(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateRule(context.Background(), CreateRuleParams{
		UserID:  "user-1",
		Name:    "bad",
		Type:    "email",
		Trigger: "whenever",
	})
	require.Error(t, err)

	var base errutil.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, errutil.StatusValidationFailed, base.Code)
}

func TestService_CreateRuleRejectsMismatchedTrigger(t *testing.T) {
	svc, _ := newTestService(t)

	// valid trigger, wrong type
	_, err := svc.CreateRule(context.Background(), CreateRuleParams{
		UserID:  "user-1",
		Name:    "bad",
		Type:    "pricing",
		Trigger: "new_lead",
	})
	require.Error(t, err)

	var base errutil.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, errutil.StatusValidationFailed, base.Code)
}

func TestService_CreateRuleValidatesCondition(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateRule(ctx, CreateRuleParams{
		UserID:    "user-1",
		Name:      "conditional",
		Type:      "content",
		Trigger:   "weekly_content",
		Condition: `rule_type == "content" && executions < 10`,
	})
	require.NoError(t, err)

	_, err = svc.CreateRule(ctx, CreateRuleParams{
		UserID:    "user-1",
		Name:      "broken",
		Type:      "content",
		Trigger:   "weekly_content",
		Condition: "executions <",
	})
	require.Error(t, err)

	var base errutil.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, errutil.StatusValidationFailed, base.Code)
}

func TestService_CreateLead(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	lead, err := svc.CreateLead(ctx, CreateLeadParams{UserID: "user-1", Email: "buyer@example.com"})
	require.NoError(t, err)
	require.Equal(t, LeadStatusNew, lead.Status)
	require.Nil(t, lead.RespondedAt)

	pending, err := svc.leads.ListNewUnresponded(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = svc.CreateLead(ctx, CreateLeadParams{UserID: "user-1", Email: "not-an-email"})
	require.Error(t, err)
}

func TestService_SetStatus(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	rule, err := svc.CreateRule(ctx, CreateRuleParams{
		UserID:  "user-1",
		Name:    "pause me",
		Type:    "ads",
		Trigger: "revenue_threshold",
	})
	require.NoError(t, err)

	paused, err := svc.SetStatus(ctx, rule.ID, StatusPaused)
	require.NoError(t, err)
	require.Equal(t, StatusPaused, paused.Status)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Empty(t, active)

	_, err = svc.SetStatus(ctx, rule.ID, "archived")
	require.Error(t, err)
}
