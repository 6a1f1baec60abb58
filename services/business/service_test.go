package business

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dreamseller-controlplane/pkg/errutil"
	"dreamseller-controlplane/services/earning"
	"dreamseller-controlplane/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) (*Service, Repository, earning.Repository) {
	t.Helper()

	db := testutil.NewTestDB(t, &Business{}, &earning.EarningEvent{})
	repo := NewRepository(db)
	earningRepo := earning.NewRepository(db)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	earnings := earning.NewService(earning.ServiceParams{
		Repository: earningRepo,
		Node:       node,
	})

	svc := NewService(ServiceParams{
		Repository: repo,
		Node:       node,
		Earnings:   earnings,
	})

	return svc, repo, earningRepo
}

func TestService_LaunchActivatesAndSeedsEarning(t *testing.T) {
	svc, _, earningRepo := newTestService(t)
	ctx := context.Background()

	b, err := svc.Launch(ctx, "dropshipping", "user-1")
	require.NoError(t, err)
	require.Equal(t, StatusActive, b.Status)
	require.Equal(t, 100, b.SetupProgress)
	require.Equal(t, "dropship-empire", b.Slug)
	require.Equal(t, "ecommerce", b.Category)

	events, err := earningRepo.List(ctx, earning.ListFilter{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.GreaterOrEqual(t, events[0].Amount, 50.0)
	require.LessOrEqual(t, events[0].Amount, 250.0)
	require.Equal(t, b.ID, events[0].BusinessID)
}

func TestService_LaunchRejectsUnknownModule(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Launch(context.Background(), "crypto-miner", "user-1")
	require.Error(t, err)

	var base errutil.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, errutil.StatusValidationFailed, base.Code)
}

func TestService_UpdateOptimisticConcurrency(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Launch(ctx, "blog", "user-1")
	require.NoError(t, err)

	name := "My Blog Empire"
	updated, err := svc.Update(ctx, b.ID, UpdateParams{
		Name:     &name,
		Revision: b.Revision,
	})
	require.NoError(t, err)
	require.Equal(t, "My Blog Empire", updated.Name)
	require.Equal(t, "my-blog-empire", updated.Slug)
	require.Greater(t, updated.Revision, b.Revision)

	// stale revision must conflict
	other := "Stale Writer"
	_, err = svc.Update(ctx, b.ID, UpdateParams{
		Name:     &other,
		Revision: b.Revision,
	})
	require.Error(t, err)

	var base errutil.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, errutil.StatusConflict, base.Code)
}

func TestService_SimulatorSourceListsActiveOnly(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	active, err := svc.Launch(ctx, "saas-tool", "user-1")
	require.NoError(t, err)

	inactive, err := svc.Launch(ctx, "blog", "user-1")
	require.NoError(t, err)

	status := StatusInactive
	_, err = svc.Update(ctx, inactive.ID, UpdateParams{Status: &status, Revision: inactive.Revision})
	require.NoError(t, err)

	refs, err := NewSimulatorSource(repo).ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	require.Equal(t, active.ID, refs[0].ID)
}
