package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"addisstay/internal/app/commands"
	analyticsapp "addisstay/internal/app/handlers/analytics"
	bookingapp "addisstay/internal/app/handlers/booking"
	listingapp "addisstay/internal/app/handlers/listings"
	messagingapp "addisstay/internal/app/handlers/messaging"
	notificationapp "addisstay/internal/app/handlers/notifications"
	profileapp "addisstay/internal/app/handlers/profile"
	reviewapp "addisstay/internal/app/handlers/reviews"
	wishlistapp "addisstay/internal/app/handlers/wishlist"
	"addisstay/internal/app/middleware"
	"addisstay/internal/app/outbox"
	"addisstay/internal/app/policies"
	"addisstay/internal/app/queries"
	authsvc "addisstay/internal/app/services/auth"
	"addisstay/internal/app/uow"
	domainauth "addisstay/internal/domain/auth"
	domainmessaging "addisstay/internal/domain/messaging"
	"addisstay/internal/domain/pricing"
	domainuser "addisstay/internal/domain/user"
	"addisstay/internal/infra/broker/kafka"
	"addisstay/internal/infra/cache"
	"addisstay/internal/infra/config"
	"addisstay/internal/infra/db/mongo"
	"addisstay/internal/infra/fixtures"
	ginserver "addisstay/internal/infra/http/gin"
	"addisstay/internal/infra/inbox"
	"addisstay/internal/infra/mail"
	"addisstay/internal/infra/messaging/scylla"
	"addisstay/internal/infra/obs"
	infraoutbox "addisstay/internal/infra/outbox"
	"addisstay/internal/infra/security"
	"addisstay/internal/infra/storage/memory"
	"addisstay/internal/infra/storage/redis"
	"addisstay/internal/infra/storage/s3"
	"addisstay/internal/infra/validation"
)

const (
	recommendationCacheSize = 512
	recommendationCacheTTL  = 10 * time.Minute
	inboxRetention          = 7 * 24 * time.Hour
)

// application holds everything main needs after wiring.
type application struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *obs.Metrics

	handlers ginserver.Handlers
	health   obs.HealthHandlers
	fixtures fixtures.Loader

	background []func(ctx context.Context) error
	closers    []func(ctx context.Context) error
	wg         sync.WaitGroup
}

// stores groups the backends picked from configuration.
type stores struct {
	factory       uow.UoWFactory
	users         domainuser.Repository
	outbox        outbox.Outbox
	memoryOutbox  *memory.Outbox
	outboxQueue   *infraoutbox.Store
	db            *mongo.Client
	idempotency   middleware.IdempotencyStore
	sessions      domainauth.SessionStore
	views         policies.ViewCounter
	conversations domainmessaging.Store
	photos        policies.PhotoStorage
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger, metrics *obs.Metrics) (*application, error) {
	app := &application{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		health:  obs.HealthHandlers{Checks: map[string]obs.ReadinessCheck{}},
	}
	st, err := app.openStores(ctx)
	if err != nil {
		app.close()
		return nil, err
	}

	recCache := cache.NewRecommendations(recommendationCacheSize, recommendationCacheTTL)
	app.closers = append(app.closers, func(context.Context) error {
		recCache.Stop()
		return nil
	})

	encoder := outbox.JSONEventEncoder{IDGenerator: uuid.NewString}
	mailer := mail.LogMailer{Logger: logger}
	quoter := pricing.Policy{ServiceFeeRate: cfg.ServiceFeeRate, TaxRate: cfg.TaxRate}
	hasher := security.BcryptHasher{}

	projector := &notificationapp.Projector{
		UoWFactory:    st.factory,
		Conversations: st.conversations,
		Mailer:        mailer,
		Observer:      metrics,
		Logger:        logger,
	}
	if err := app.wireDelivery(st, projector); err != nil {
		app.close()
		return nil, err
	}

	authService := &authsvc.Service{
		Users:      st.users,
		Sessions:   st.sessions,
		Passwords:  hasher,
		Tokens:     security.RandomTokenGenerator{},
		Signer:     security.JWTSigner{Secret: []byte(cfg.JWTSecret), Issuer: cfg.JWTIssuer},
		Mailer:     mailer,
		SessionTTL: cfg.SessionTTL,
		LinkTTL:    cfg.LinkTTL,
		PublicURL:  cfg.PublicURL,
		Logger:     logger,
	}

	commandBus := commands.NewInMemoryBus()
	bookingTransitions := bookingapp.Transitions{Encoder: encoder}
	hostCatalog := listingapp.HostCatalog{Cache: recCache, Encoder: encoder}
	conversations := messagingapp.Conversations{Store: st.conversations, Encoder: encoder}

	commands.RegisterHandler(commandBus, &bookingapp.RequestBookingHandler{Pricing: quoter, Encoder: encoder})
	commands.RegisterHandler(commandBus, &bookingapp.ConfirmBookingHandler{Transitions: bookingTransitions})
	commands.RegisterHandler(commandBus, &bookingapp.CancelBookingHandler{Transitions: bookingTransitions})
	commands.RegisterHandler(commandBus, &bookingapp.CompleteBookingHandler{Transitions: bookingTransitions})
	commands.RegisterHandler(commandBus, &listingapp.CreateListingHandler{HostCatalog: hostCatalog})
	commands.RegisterHandler(commandBus, &listingapp.UpdateListingHandler{HostCatalog: hostCatalog})
	commands.RegisterHandler(commandBus, &listingapp.ActivateListingHandler{HostCatalog: hostCatalog})
	commands.RegisterHandler(commandBus, &listingapp.DeactivateListingHandler{HostCatalog: hostCatalog})
	commands.RegisterHandler(commandBus, &listingapp.AddPhotosHandler{HostCatalog: hostCatalog, Storage: st.photos})
	commands.RegisterHandler(commandBus, &reviewapp.SubmitReviewHandler{Encoder: encoder, Cache: recCache})
	commands.RegisterHandler(commandBus, &reviewapp.MarkHelpfulHandler{})
	commands.RegisterHandler(commandBus, &messagingapp.StartConversationHandler{Conversations: conversations})
	commands.RegisterHandler(commandBus, &messagingapp.SendMessageHandler{Conversations: conversations})
	commands.RegisterHandler(commandBus, &messagingapp.MarkReadHandler{Conversations: conversations})
	commands.RegisterHandler(commandBus, &notificationapp.MarkReadHandler{})
	commands.RegisterHandler(commandBus, &notificationapp.MarkAllReadHandler{})
	commands.RegisterHandler(commandBus, &notificationapp.DeleteHandler{})
	commands.RegisterHandler(commandBus, &profileapp.UpdateProfileHandler{})
	commands.RegisterHandler(commandBus, &profileapp.BecomeHostHandler{})
	commands.RegisterHandler(commandBus, &wishlistapp.ToggleWishlistHandler{})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, &listingapp.SearchCatalogHandler{UoWFactory: st.factory})
	queries.RegisterHandler(queryBus, &listingapp.GetListingHandler{UoWFactory: st.factory, Views: st.views, Logger: logger})
	queries.RegisterHandler(queryBus, &listingapp.QuoteHandler{UoWFactory: st.factory, Pricing: quoter})
	queries.RegisterHandler(queryBus, &listingapp.RecommendationsHandler{UoWFactory: st.factory, Cache: recCache})
	queries.RegisterHandler(queryBus, &listingapp.ListHostListingsHandler{UoWFactory: st.factory})
	queries.RegisterHandler(queryBus, &reviewapp.ListReviewsHandler{UoWFactory: st.factory})
	queries.RegisterHandler(queryBus, &bookingapp.GuestBookingsHandler{UoWFactory: st.factory})
	queries.RegisterHandler(queryBus, &bookingapp.HostBookingsHandler{UoWFactory: st.factory})
	queries.RegisterHandler(queryBus, &messagingapp.ListConversationsHandler{Store: st.conversations})
	queries.RegisterHandler(queryBus, &messagingapp.ListMessagesHandler{Store: st.conversations})
	queries.RegisterHandler(queryBus, &notificationapp.ListNotificationsHandler{UoWFactory: st.factory})
	queries.RegisterHandler(queryBus, &profileapp.GetProfileHandler{UoWFactory: st.factory})
	queries.RegisterHandler(queryBus, &wishlistapp.WishlistHandler{UoWFactory: st.factory})
	queries.RegisterHandler(queryBus, &analyticsapp.HostDashboardHandler{UoWFactory: st.factory, Views: st.views, Logger: logger})

	validator := validation.New()
	commandPipeline := middleware.ChainCommands(
		commandBus,
		middleware.Instrument(logger, metrics),
		middleware.Validation(validator),
		middleware.Authorization(),
		middleware.Idempotency(st.idempotency, nil),
		middleware.OutboxFlush(st.outbox),
		middleware.Transaction(st.factory, nil),
	)
	queryPipeline := middleware.ChainQueries(
		queryBus,
		middleware.QueryValidation(validator),
		middleware.QueryAuthorization(),
	)

	sweep := &notificationapp.ReminderSweep{UoWFactory: st.factory, Observer: metrics, Logger: logger}
	app.background = append(app.background, func(ctx context.Context) error {
		return sweep.Run(ctx, cfg.ReminderInterval)
	})

	app.fixtures = fixtures.Loader{Factory: st.factory, Hasher: hasher, Logger: logger}
	app.handlers = ginserver.Handlers{
		Auth:          &ginserver.AuthHandler{Service: authService, Queries: queryPipeline, Logger: logger},
		Profile:       &ginserver.ProfileHandler{Commands: commandPipeline},
		Currency:      &ginserver.CurrencyHandler{},
		Listing:       &ginserver.ListingHandler{Queries: queryPipeline},
		Review:        &ginserver.ReviewHandler{Commands: commandPipeline, Queries: queryPipeline},
		Booking:       &ginserver.BookingHandler{Commands: commandPipeline, Queries: queryPipeline},
		Wishlist:      &ginserver.WishlistHandler{Commands: commandPipeline, Queries: queryPipeline},
		Notification:  &ginserver.NotificationHandler{Commands: commandPipeline, Queries: queryPipeline},
		Conversation:  &ginserver.ConversationHandler{Commands: commandPipeline, Queries: queryPipeline},
		HostListing:   &ginserver.HostListingHandler{Commands: commandPipeline, Queries: queryPipeline, Logger: logger},
		HostBooking:   &ginserver.HostBookingHandler{Commands: commandPipeline, Queries: queryPipeline},
		Analytics:     &ginserver.AnalyticsHandler{Queries: queryPipeline},
		Authenticator: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
		Metrics:       metrics,
	}
	return app, nil
}

// openStores connects the configured backends. Anything left unset falls
// back to the in-process implementation.
func (a *application) openStores(ctx context.Context) (*stores, error) {
	cfg := a.cfg
	st := &stores{}

	switch cfg.StorageMode {
	case config.StorageMongo:
		client, err := mongo.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		a.health.Checks["mongo"] = client.Ping
		queue := infraoutbox.NewStore(client.DB)
		factory := mongo.NewFactory(client.DB, queue)
		st.db = client
		st.outboxQueue = queue
		st.outbox = queue
		st.factory = factory
		st.users = factory.Users
		st.idempotency = mongo.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
	default:
		box := memory.NewOutbox(nil, a.logger)
		box.Observer = a.metrics
		factory := memory.NewFactory(box)
		st.memoryOutbox = box
		st.outbox = box
		st.factory = factory
		st.users = factory.Users
		st.idempotency = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	}

	st.sessions = memory.NewSessionStore()
	st.views = memory.NewViewCounter()
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, closeRedis(client))
		a.health.Checks["redis"] = redis.Ping(client)
		st.sessions = redis.NewSessionStore(client)
		st.views = redis.NewViewCounter(client)
		st.idempotency = redis.NewIdempotencyStore(client, cfg.IdempotencyTTL)
	}

	switch cfg.MessagingStore {
	case config.MessagingScylla:
		session, err := scylla.NewSession(ctx, scylla.SessionConfig{
			Hosts:    cfg.ScyllaHosts,
			Keyspace: cfg.ScyllaKeyspace,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect scylla: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error {
			session.Close()
			return nil
		})
		a.health.Checks["scylla"] = func(ctx context.Context) error {
			return session.Query("SELECT now() FROM system.local").WithContext(ctx).Exec()
		}
		st.conversations = scylla.NewStore(session, a.logger)
	default:
		st.conversations = memory.NewConversationStore()
	}

	st.photos = s3.Disabled{}
	if cfg.S3Endpoint != "" {
		photos, err := s3.NewPhotoStore(s3.Options{
			Endpoint:      cfg.S3Endpoint,
			UseSSL:        cfg.S3UseSSL,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			PublicBaseURL: cfg.S3PublicEndpoint,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect object storage: %w", err)
		}
		a.health.Checks["s3"] = photos.Ping
		st.photos = photos
	}
	return st, nil
}

// wireDelivery connects committed events to the projector. In memory mode
// the outbox hands records over after commit. In mongo mode a worker drains
// the outbox collection either straight into the projector or through Kafka.
func (a *application) wireDelivery(st *stores, projector *notificationapp.Projector) error {
	if st.memoryOutbox != nil {
		st.memoryOutbox.Handler = projector
		return nil
	}
	cfg := a.cfg
	worker := &infraoutbox.Worker{
		Store:    st.outboxQueue,
		Sink:     projector,
		Interval: cfg.OutboxPollInterval,
		Backoff:  cfg.RetryBackoff,
		Observer: a.metrics,
		Logger:   a.logger,
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return fmt.Errorf("connect kafka producer: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return producer.Close() })
		worker.Sink = kafka.Publisher{Producer: producer, TopicPrefix: cfg.KafkaTopicPrefix, Source: "addisstay"}

		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, nil, kafka.EventHandler{
			Next:   projector,
			Inbox:  inbox.NewStore(st.db.DB, cfg.KafkaGroupID, inboxRetention),
			Logger: a.logger,
		})
		if err != nil {
			return fmt.Errorf("connect kafka consumer: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return consumer.Close() })
		topics := kafka.Topics(cfg.KafkaTopicPrefix)
		a.background = append(a.background, func(ctx context.Context) error {
			return consumer.Run(ctx, topics)
		})
	}
	a.background = append(a.background, worker.Run)
	return nil
}

func (a *application) startBackground(ctx context.Context) {
	for _, run := range a.background {
		a.goRun(ctx, run)
	}
	if a.cfg.GRPCHealthAddr != "" {
		grpcHealth := obs.NewGRPCHealth(a.health, a.logger)
		a.goRun(ctx, func(ctx context.Context) error {
			return grpcHealth.Serve(ctx, a.cfg.GRPCHealthAddr, 0)
		})
	}
}

func (a *application) goRun(ctx context.Context, run func(ctx context.Context) error) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := run(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error("background task stopped", "error", err)
		}
	}()
}

func (a *application) wait() {
	a.wg.Wait()
}

// close releases backends in reverse order of acquisition.
func (a *application) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}

func closeRedis(client *goredis.Client) func(context.Context) error {
	return func(context.Context) error { return client.Close() }
}
