package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdugdh24/kindred-backend/internal/config"
	deliveryhttp "github.com/gdugdh24/kindred-backend/internal/delivery/http"
	"github.com/gdugdh24/kindred-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/kindred-backend/internal/infrastructure/database"
	"github.com/gdugdh24/kindred-backend/internal/infrastructure/events"
	"github.com/gdugdh24/kindred-backend/internal/infrastructure/gemini"
	"github.com/gdugdh24/kindred-backend/internal/infrastructure/server"
	"github.com/gdugdh24/kindred-backend/internal/repository"
	"github.com/gdugdh24/kindred-backend/internal/repository/memory"
	"github.com/gdugdh24/kindred-backend/internal/repository/postgres"
	redisrepo "github.com/gdugdh24/kindred-backend/internal/repository/redis"
	"github.com/gdugdh24/kindred-backend/internal/usecase/chat"
	"github.com/gdugdh24/kindred-backend/internal/usecase/feed"
	"github.com/gdugdh24/kindred-backend/internal/usecase/profile"
	"github.com/gdugdh24/kindred-backend/internal/usecase/swipe"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client
	AMQP   *amqp.Connection
	Gemini *gemini.GeminiClient
	Router *gin.Engine
	Server *server.Server
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	profileRepo, likeRepo, messageRepo, err := c.initRepositories(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	var (
		candidateCache feed.CandidateCache
		invalidator    swipe.CacheInvalidator
	)
	if cfg.Redis.Enabled {
		client, err := database.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		c.Redis = client
		cache := redisrepo.NewCandidateCache(client, cfg.Matching.CacheTTL)
		candidateCache = cache
		invalidator = cache
	}

	publisher, err := c.initPublisher()
	if err != nil {
		c.Close()
		return nil, err
	}

	var icebreakers swipe.IcebreakerGenerator
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := gemini.NewGeminiClient(ctx, cfg.GeminiAPIKey, logger)
		if err != nil {
			// Don't fail, just continue with template icebreakers
			logger.Warn("gemini client unavailable", zap.Error(err))
		} else {
			c.Gemini = geminiClient
			icebreakers = geminiClient
		}
	}

	// Initialize use cases
	profileUseCase := profile.NewProfileUseCase(profileRepo, invalidator, logger)

	feedUseCase := feed.NewFeedUseCase(
		profileRepo,
		likeRepo,
		candidateCache,
		feed.Config{
			DefaultLimit:    cfg.Matching.DefaultLimit,
			AuxLimit:        cfg.Matching.AuxLimit,
			MaxLimit:        cfg.Matching.MaxLimit,
			FallbackEnabled: cfg.Matching.FallbackEnabled,
		},
		logger,
	)

	swipeUseCase := swipe.NewSwipeUseCase(
		profileRepo,
		likeRepo,
		publisher,
		invalidator,
		icebreakers,
		logger,
	)

	chatUseCase := chat.NewChatUseCase(
		profileRepo,
		messageRepo,
		swipeUseCase,
		publisher,
		logger,
	)

	// Initialize handlers
	router := deliveryhttp.NewRouter(
		handler.NewProfileHandler(profileUseCase, logger),
		handler.NewFeedHandler(feedUseCase, logger),
		handler.NewSwipeHandler(swipeUseCase, logger),
		handler.NewChatHandler(chatUseCase, logger),
		logger,
	)

	c.Router = router.Setup()
	c.Server = server.NewServer(&cfg.Server, c.Router, logger)

	return c, nil
}

func (c *Container) initRepositories(ctx context.Context) (
	repository.ProfileRepository,
	repository.LikeRepository,
	repository.MessageRepository,
	error,
) {
	switch c.Config.Storage.Type {
	case config.StorageTypeMemory:
		c.Logger.Info("using in-memory storage")
		return memory.NewProfileRepository(), memory.NewLikeRepository(), memory.NewMessageRepository(), nil
	case config.StorageTypePostgres:
		db, err := database.NewPostgresDB(ctx, &c.Config.Database)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db
		timeout := c.Config.Matching.StoreTimeout
		return postgres.NewProfileRepository(db, timeout),
			postgres.NewLikeRepository(db, timeout),
			postgres.NewMessageRepository(db, timeout),
			nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown storage type %q", c.Config.Storage.Type)
	}
}

// eventPublisher is satisfied by both the broker emitter and the log fallback.
type eventPublisher interface {
	swipe.EventPublisher
	chat.EventPublisher
}

func (c *Container) initPublisher() (eventPublisher, error) {
	if c.Config.Events.RabbitMQURL == "" {
		return events.NewLogPublisher(c.Logger), nil
	}

	conn, err := amqp.Dial(c.Config.Events.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	c.AMQP = conn

	emitter, err := events.NewEmitter(conn, c.Config.Events.Exchange, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event emitter: %w", err)
	}
	return emitter, nil
}

// Close closes all connections
func (c *Container) Close() error {
	var errs []error

	if c.Gemini != nil {
		if err := c.Gemini.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close gemini: %w", err))
		}
	}
	if c.AMQP != nil {
		if err := c.AMQP.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rabbitmq: %w", err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
