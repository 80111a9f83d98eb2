package container

import (
	"context"
	"fmt"

	"github.com/duetapp/duet-backend/internal/compat"
	"github.com/duetapp/duet-backend/internal/config"
	"github.com/duetapp/duet-backend/internal/delivery/http"
	"github.com/duetapp/duet-backend/internal/delivery/http/handler"
	"github.com/duetapp/duet-backend/internal/delivery/http/middleware"
	"github.com/duetapp/duet-backend/internal/delivery/ws"
	"github.com/duetapp/duet-backend/internal/infrastructure/database"
	"github.com/duetapp/duet-backend/internal/infrastructure/gemini"
	"github.com/duetapp/duet-backend/internal/infrastructure/server"
	pgrepo "github.com/duetapp/duet-backend/internal/repository/postgres"
	"github.com/duetapp/duet-backend/internal/store/redisstore"
	"github.com/duetapp/duet-backend/internal/usecase/matchmaking"
	"github.com/duetapp/duet-backend/internal/usecase/minigame"
	"github.com/duetapp/duet-backend/internal/usecase/moderation"
	"github.com/duetapp/duet-backend/internal/usecase/profile"
	"github.com/duetapp/duet-backend/internal/usecase/prompt"
	"github.com/duetapp/duet-backend/internal/usecase/session"
	"github.com/duetapp/duet-backend/internal/usecase/signaling"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	DB     *sqlx.DB
	Redis  *redis.Client
	Server *server.Server
	Gemini *gemini.GeminiClient

	Sessions *session.UseCase

	sweepCancel context.CancelFunc
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	// Initialize database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize Redis
	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize Gemini client
	geminiClient, err := gemini.NewGeminiClient(cfg.GeminiAPIKey)
	if err != nil {
		log.Warn().Err(err).Msg("gemini client unavailable, AI features disabled")
		geminiClient = nil
	}

	// Initialize repositories
	userRepo := pgrepo.NewUserRepository(db)
	profileRepo := pgrepo.NewProfileRepository(db)
	matchRepo := pgrepo.NewMatchRepository(db)
	blockRepo := pgrepo.NewBlockRepository(db)
	reportRepo := pgrepo.NewReportRepository(db)

	// Initialize Redis-backed stores
	queueStore := redisstore.NewQueueStore(redisClient)
	roomStore := redisstore.NewRoomStore(redisClient)
	voteStore := redisstore.NewVoteStore(redisClient)
	gameStore := redisstore.NewGameStore(redisClient)
	promptStore := redisstore.NewPromptStore(redisClient)
	inviteStore := redisstore.NewInviteStore(redisClient)
	broker := redisstore.NewBroker(redisClient)

	// Initialize use cases
	schema := compat.DefaultSchema()
	scorer := compat.NewScorer(schema)
	timers := session.NewRoomTimers()

	profileUseCase := profile.NewProfileUseCase(profileRepo, userRepo, schema)

	matchmakingUseCase := matchmaking.NewUseCase(
		queueStore,
		roomStore,
		inviteStore,
		broker,
		userRepo,
		profileRepo,
		blockRepo,
		reportRepo,
		scorer,
		cfg.Matchmaking.MaxCandidates,
		cfg.Matchmaking.InviteTTL,
	)

	sessionUseCase := session.NewUseCase(
		roomStore,
		voteStore,
		broker,
		matchRepo,
		timers,
		session.Config{
			AnswerTimeout:    cfg.Session.AnswerTimeout,
			CallAgainTimeout: cfg.Session.CallAgainTimeout,
			RoomMaxAge:       cfg.Session.RoomMaxAge,
		},
	)

	relay := signaling.NewRelay(roomStore, broker)

	gameCfg := minigame.DefaultConfig()
	gameCfg.StateTTL = cfg.Games.StateTTL
	gameCfg.HeadsupTurnTimeout = cfg.Games.HeadsupTurnTimeout
	gameCfg.TriviaWindow = cfg.Games.TriviaWindow
	gameEngine := minigame.NewEngine(roomStore, gameStore, broker, timers, gameCfg)

	// A nil *GeminiClient must stay a nil interface downstream.
	var generator prompt.Generator
	var classifier moderation.Classifier
	if geminiClient != nil {
		generator = geminiClient
		classifier = geminiClient
	}

	promptUseCase := prompt.NewUseCase(roomStore, promptStore, broker, profileRepo, generator)
	moderationUseCase := moderation.NewUseCase(reportRepo, userRepo, broker, classifier)

	// Initialize handlers
	profileHandler := handler.NewProfileHandler(profileUseCase)
	matchHandler := handler.NewMatchHandler(sessionUseCase)
	reportHandler := handler.NewReportHandler(moderationUseCase)
	callHandler := handler.NewCallHandler(matchmakingUseCase)

	matchmakingWSHandler := ws.NewMatchmakingHandler(matchmakingUseCase, broker)
	callWSHandler := ws.NewCallHandler(relay, sessionUseCase, gameEngine, promptUseCase, broker)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.AccessSecret)

	// Initialize router
	router := http.NewRouter(
		profileHandler,
		matchHandler,
		reportHandler,
		callHandler,
		matchmakingWSHandler,
		callWSHandler,
		authMiddleware,
	)

	// Setup routes
	ginRouter := router.Setup()

	// Initialize server
	srv := server.NewServer(&cfg.Server, ginRouter)

	// Background sweep for rooms orphaned by a crash
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	sessionUseCase.StartSweeper(sweepCtx, cfg.Session.SweepInterval)

	return &Container{
		Config:      cfg,
		DB:          db,
		Redis:       redisClient,
		Server:      srv,
		Gemini:      geminiClient,
		Sessions:    sessionUseCase,
		sweepCancel: sweepCancel,
	}, nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.sweepCancel != nil {
		c.sweepCancel()
	}

	// Close Redis
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis")
		}
	}

	// Close database
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
