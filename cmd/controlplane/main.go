package main

import (
	"log"
	"os"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	asynqfx "dreamseller-controlplane/pkg/asynq"
	"dreamseller-controlplane/pkg/config"
	"dreamseller-controlplane/pkg/db"
	"dreamseller-controlplane/pkg/featureflags"
	"dreamseller-controlplane/pkg/health"
	"dreamseller-controlplane/pkg/logger"
	"dreamseller-controlplane/pkg/otelcol"
	"dreamseller-controlplane/pkg/outbound"
	"dreamseller-controlplane/pkg/payment"
	"dreamseller-controlplane/pkg/redis"
	"dreamseller-controlplane/pkg/secretmanager"
	"dreamseller-controlplane/pkg/sequence"
	"dreamseller-controlplane/pkg/server"
	"dreamseller-controlplane/services/automation"
	"dreamseller-controlplane/services/business"
	"dreamseller-controlplane/services/catalog"
	"dreamseller-controlplane/services/domain"
	"dreamseller-controlplane/services/earning"
	"dreamseller-controlplane/services/payout"
	"dreamseller-controlplane/services/realtime"
)

func main() {
	opts := []fx.Option{
		logger.Module,
		config.Module,
		db.Module,
		redis.Module,
		asynqfx.Client,
		sequence.Module,
		outbound.Module,
		payment.Module,
		featureflags.Module,
		otelcol.Module,
		fx.Provide(
			server.RegisterEngine,
			provideSnowflakeNode,
		),
		fx.Invoke(autoMigrate),
		health.Module,
		earning.Module,
		realtime.Module,
		business.Module,
		catalog.Module,
		automation.Module,
		payout.Module,
		domain.Module,
		server.ProvideHTTPServer,
		fxLogger,
	}

	if os.Getenv("VAULT_ADDR") != "" {
		opts = append([]fx.Option{secretmanager.Module}, opts...)
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&earning.EarningEvent{},
		&business.Business{},
		&catalog.Product{},
		&automation.Rule{},
		&automation.Lead{},
		&automation.BlogPost{},
		&payout.PayoutSchedule{},
		&payout.PayoutTransaction{},
		&domain.StorefrontDomain{},
	)
}
