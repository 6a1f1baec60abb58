package domain

import (
	"context"
	"errors"
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

type codeMock struct{}

func (codeMock) NextTransactionCode(ctx context.Context, userID string) (string, error) {
	return "TXN-TEST", nil
}

func (codeMock) NextPayoutCode(ctx context.Context, userID string) (string, error) {
	return "PAY-TEST", nil
}

func (codeMock) NextVerificationCode(ctx context.Context) (string, error) {
	return "dreamseller-verify=TESTTESTTEST", nil
}

func newTestService(t *testing.T, verify Verifier) (*Service, Repository) {
	t.Helper()

	db := testutil.NewTestDB(t, &StorefrontDomain{})
	repo := NewRepository(db)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParams{Repository: repo, Codes: codeMock{}, Node: node})
	if verify != nil {
		svc.verify = verify
	}
	return svc, repo
}

func TestService_ClaimAssignsVerificationCode(t *testing.T) {
	svc, repo := newTestService(t, nil)

	d, err := svc.Claim(context.Background(), ClaimParams{
		UserID:     "user-1",
		BusinessID: "biz-1",
		Hostname:   "Shop.Example.COM ",
	})
	require.NoError(t, err)
	require.Equal(t, "shop.example.com", d.Hostname)
	require.Equal(t, StatusPending, d.Status)
	require.Contains(t, d.VerificationCode, "dreamseller-verify=")

	stored, err := repo.GetByHostname(context.Background(), "shop.example.com")
	require.NoError(t, err)
	require.Equal(t, d.ID, stored.ID)
}

func TestService_ClaimRejectsDuplicateHostname(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Claim(ctx, ClaimParams{
		UserID: "user-1", BusinessID: "biz-1", Hostname: "shop.example.com",
	})
	require.NoError(t, err)

	_, err = svc.Claim(ctx, ClaimParams{
		UserID: "user-2", BusinessID: "biz-2", Hostname: "shop.example.com",
	})
	require.Error(t, err)

	var base errutil.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, errutil.StatusConflict, base.Code)
}

func TestService_ClaimRejectsInvalidHostnames(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	for _, hostname := range []string{"", "localhost", "https://shop.example.com/path"} {
		_, err := svc.Claim(ctx, ClaimParams{
			UserID: "user-1", BusinessID: "biz-1", Hostname: hostname,
		})
		require.Error(t, err, hostname)
	}
}

func TestService_VerifyMarksDomainVerified(t *testing.T) {
	var checkedHost, checkedCode string
	svc, repo := newTestService(t, func(hostname, code string) error {
		checkedHost, checkedCode = hostname, code
		return nil
	})
	ctx := context.Background()

	d, err := svc.Claim(ctx, ClaimParams{
		UserID: "user-1", BusinessID: "biz-1", Hostname: "shop.example.com",
	})
	require.NoError(t, err)

	verified, err := svc.Verify(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, StatusVerified, verified.Status)
	require.NotNil(t, verified.VerifiedAt)
	require.Equal(t, "shop.example.com", checkedHost)
	require.Equal(t, d.VerificationCode, checkedCode)

	stored, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, StatusVerified, stored.Status)
}

func TestService_VerifySurfacesMissingRecord(t *testing.T) {
	svc, _ := newTestService(t, func(hostname, code string) error {
		return errors.New("no matching TXT record found")
	})
	ctx := context.Background()

	d, err := svc.Claim(ctx, ClaimParams{
		UserID: "user-1", BusinessID: "biz-1", Hostname: "shop.example.com",
	})
	require.NoError(t, err)

	_, err = svc.Verify(ctx, d.ID)
	require.Error(t, err)

	var base errutil.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, errutil.StatusValidationFailed, base.Code)
}

func TestService_VerifyIsIdempotent(t *testing.T) {
	calls := 0
	svc, _ := newTestService(t, func(hostname, code string) error {
		calls++
		return nil
	})
	ctx := context.Background()

	d, err := svc.Claim(ctx, ClaimParams{
		UserID: "user-1", BusinessID: "biz-1", Hostname: "shop.example.com",
	})
	require.NoError(t, err)

	_, err = svc.Verify(ctx, d.ID)
	require.NoError(t, err)
	_, err = svc.Verify(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}
