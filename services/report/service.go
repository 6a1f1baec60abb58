package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dreamseller-controlplane/pkg/config"
	"dreamseller-controlplane/services/earning"

	"github.com/minio/minio-go/v7"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Uploader stores a finished report object.
type Uploader interface {
	Upload(ctx context.Context, bucket, object string, body []byte, contentType string) error
}

// MonthlyReport is the persisted rollup for one calendar month.
type MonthlyReport struct {
	Month       string             `json:"month"` // YYYY-MM, UTC
	Events      int                `json:"events"`
	Aggregates  earning.Aggregates `json:"aggregates"`
	GeneratedAt time.Time          `json:"generated_at"`
}

type Service struct {
	earnings earning.Repository
	uploader Uploader
	bucket   string
}

type ServiceParams struct {
	fx.In
	Earnings earning.Repository
	Uploader Uploader
	Config   *config.Config
}

func NewService(p ServiceParams) *Service {
	return &Service{
		earnings: p.Earnings,
		uploader: p.Uploader,
		bucket:   p.Config.Reports.Bucket,
	}
}

// BuildMonthly aggregates every earning in the given month and uploads the
// result as reports/YYYY-MM.json.
func (s *Service) BuildMonthly(ctx context.Context, month time.Time) (*MonthlyReport, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	events, err := s.earnings.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	report := &MonthlyReport{
		Month:       from.Format("2006-01"),
		Events:      len(events),
		Aggregates:  earning.ComputeAggregates(events, earning.AggregateOptions{}),
		GeneratedAt: time.Now().UTC(),
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, err
	}

	object := fmt.Sprintf("reports/%s.json", report.Month)
	if err := s.uploader.Upload(ctx, s.bucket, object, body, "application/json"); err != nil {
		return nil, err
	}

	zap.L().Info("monthly report uploaded",
		zap.String("object", object),
		zap.Int("events", report.Events),
		zap.Float64("grand_total", report.Aggregates.GrandTotal),
	)

	return report, nil
}

type minioUploader struct {
	client *minio.Client
}

// NewMinioUploader adapts the object-store client to the Uploader seam.
func NewMinioUploader(client *minio.Client) Uploader {
	return &minioUploader{client: client}
}

func (u *minioUploader) Upload(ctx context.Context, bucket, object string, body []byte, contentType string) error {
	_, err := u.client.PutObject(ctx, bucket, object,
		bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	return err
}
