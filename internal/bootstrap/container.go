package bootstrap

import (
	"context"
	"log"

	"givehub-be/internal/campaign"
	"givehub-be/internal/config"
	"givehub-be/internal/controller"
	"givehub-be/internal/pkg/logger"
	"givehub-be/internal/pkg/mailer"
	"givehub-be/internal/repository/implementation"
	"givehub-be/internal/repository/unitofwork"
	"givehub-be/internal/service"
	"givehub-be/pkg/aggregator"
	"givehub-be/pkg/gateway"
	"givehub-be/pkg/gateway/card"
	"givehub-be/pkg/gateway/manual"
	"givehub-be/pkg/gateway/wallet"
	"givehub-be/pkg/receipt"
	"givehub-be/pkg/scheduler"

	pktNats "givehub-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DonationController     controller.IDonationController
	SubscriptionController controller.ISubscriptionController
	WebhookController      controller.IWebhookController
	ReceiptController      controller.IReceiptController
	CampaignController     controller.ICampaignController

	// Background workers (exposed for main.go to run)
	ReconcileService service.IReconcileService
	Scheduler        *scheduler.Scheduler

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis (scheduler single-flight lease)
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// 3. Payment gateways. The registry is closed at startup: a provider
	// id the registry does not know is a config error, not a 500.
	gws := []gateway.Gateway{
		card.New(card.Config{
			ServerKey:    cfg.Gateways.CardServerKey,
			IsProduction: cfg.Gateways.CardProduction,
			FeeRate:      cfg.Gateways.CardFeeRate,
			FeeFixed:     cfg.Gateways.CardFeeFixed,
		}),
		wallet.New(wallet.Config{
			BaseURL:       cfg.Gateways.WalletBaseURL,
			ClientId:      cfg.Gateways.WalletClientId,
			ClientSecret:  cfg.Gateways.WalletSecret,
			WebhookSecret: cfg.Gateways.WalletWebhookSecret,
		}),
	}
	if cfg.Gateways.ManualEnabled {
		gws = append(gws, manual.New())
	}
	registry, err := gateway.NewRegistry(gws...)
	if err != nil {
		log.Fatalf("[FATAL] Gateway registry: %v", err)
	}

	// 4. Domain components
	gate := campaign.NewGate(uowFactory)
	agg := aggregator.New(uowFactory, gate, sysLogger)
	sequencer := receipt.NewSequencer(implementation.NewReceiptRepository(db))

	// 5. Services
	receiptService := service.NewReceiptService(uowFactory, sequencer, emailService, natsPub, sysLogger)
	donationService := service.NewDonationService(uowFactory, registry, gate, agg, natsPub, sysLogger)
	reconcileService := service.NewReconcileService(pubSub, uowFactory, registry, agg, receiptService, natsPub, sysLogger)
	subscriptionService := service.NewSubscriptionService(uowFactory, registry, gate, donationService, emailService, natsPub, sysLogger)

	sched := scheduler.New(cfg.Scheduler, subscriptionService, agg, uowFactory, rdb, sysLogger)

	// 6. Controllers
	return &Container{
		DonationController:     controller.NewDonationController(donationService, reconcileService),
		SubscriptionController: controller.NewSubscriptionController(subscriptionService),
		WebhookController:      controller.NewWebhookController(reconcileService, sysLogger),
		ReceiptController:      controller.NewReceiptController(receiptService),
		CampaignController:     controller.NewCampaignController(gate),

		ReconcileService: reconcileService,
		Scheduler:        sched,

		Logger: sysLogger,
	}
}
