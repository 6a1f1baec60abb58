package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"dreamseller-controlplane/pkg/dns"
	"dreamseller-controlplane/pkg/errutil"
	"dreamseller-controlplane/pkg/sequence"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Verifier checks that a hostname publishes the expected TXT record.
type Verifier func(hostname, expectedCode string) error

type Service struct {
	repo   Repository
	codes  sequence.Generator
	node   *snowflake.Node
	verify Verifier
}

type ServiceParams struct {
	fx.In
	Repository Repository
	Codes      sequence.Generator
	Node       *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		repo:   p.Repository,
		codes:  p.Codes,
		node:   p.Node,
		verify: dns.VerifyDNSRecord,
	}
}

// Claim registers a hostname for a business and hands back the TXT token the
// owner must publish before Verify will succeed.
func (s *Service) Claim(ctx context.Context, params ClaimParams) (*StorefrontDomain, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	hostname := strings.ToLower(strings.TrimSpace(params.Hostname))
	if hostname == "" {
		return nil, errutil.ValidationFailed("hostname is required", nil)
	}
	if params.BusinessID == "" {
		return nil, errutil.ValidationFailed("business_id is required", nil)
	}
	if strings.Contains(hostname, "/") || !strings.Contains(hostname, ".") {
		return nil, errutil.ValidationFailed("hostname must be a bare domain name", nil,
			errutil.WithDetails(errutil.Detail{Field: "hostname", Message: hostname}))
	}

	if existing, err := s.repo.GetByHostname(ctx, hostname); err == nil && existing != nil {
		return nil, errutil.Conflict("hostname is already claimed", nil)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	code, err := s.codes.NextVerificationCode(ctx)
	if err != nil {
		return nil, errutil.Internal("failed to generate verification code", err)
	}

	now := time.Now().UTC()
	d := &StorefrontDomain{
		ID:               s.node.Generate().String(),
		BusinessID:       params.BusinessID,
		UserID:           params.UserID,
		Hostname:         hostname,
		VerificationCode: code,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Verify resolves the domain's TXT records and marks it verified when the
// claim token is found. Verification is idempotent.
func (s *Service) Verify(ctx context.Context, id string) (*StorefrontDomain, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("domain not found", nil)
		}
		return nil, err
	}

	if d.Status == StatusVerified {
		return d, nil
	}

	if err := s.verify(d.Hostname, d.VerificationCode); err != nil {
		return nil, errutil.ValidationFailed("TXT record not found or does not match", err,
			errutil.WithDetails(errutil.Detail{Field: "hostname", Message: d.Hostname}))
	}

	now := time.Now().UTC()
	if err := s.repo.MarkVerified(ctx, d.ID, now); err != nil {
		return nil, err
	}

	d.Status = StatusVerified
	d.VerifiedAt = &now
	return d, nil
}

func (s *Service) Get(ctx context.Context, id string) (*StorefrontDomain, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("domain not found", nil)
		}
		return nil, err
	}
	return d, nil
}

func (s *Service) ListByBusiness(ctx context.Context, businessID string) ([]StorefrontDomain, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if businessID == "" {
		return nil, errutil.ValidationFailed("business_id is required", nil)
	}
	return s.repo.ListByBusiness(ctx, businessID)
}
