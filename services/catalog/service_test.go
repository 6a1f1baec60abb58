package catalog

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

	db := testutil.NewTestDB(t, &Product{})
	repo := NewRepository(db)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParams{Repository: repo, Node: node})
	return svc, repo
}

func TestService_Create(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.Create(context.Background(), CreateParams{
		UserID:     "user-1",
		BusinessID: "biz-1",
		Name:       "Posture Corrector",
		Price:      24.99,
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.False(t, p.AutoImported)
	require.Zero(t, p.SalesLast7Days)
}

func TestService_CreateValidates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateParams{UserID: "", Name: "x", Price: 1})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateParams{UserID: "user-1", Name: "", Price: 1})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateParams{UserID: "user-1", Name: "x", Price: -1})
	require.Error(t, err)
}

func TestService_GetMapsMissingProduct(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)

	var base errutil.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, errutil.StatusNotFound, base.Code)
}

func TestRepository_UpdatePrice(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateParams{
		UserID: "user-1", BusinessID: "biz-1", Name: "Desk Mat", Price: 19.99,
	})
	require.NoError(t, err)

	require.NoError(t, repo.UpdatePrice(ctx, p.ID, 20.99))

	updated, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.InDelta(t, 20.99, updated.Price, 0.001)

	require.Error(t, repo.UpdatePrice(ctx, "missing", 1))
}
