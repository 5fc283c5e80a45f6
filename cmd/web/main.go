package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/vetta-app/vetta/internal/envstruct"
	"github.com/vetta-app/vetta/internal/errors"
	"github.com/vetta-app/vetta/internal/fitcheck"
	"github.com/vetta-app/vetta/internal/logging"
	"github.com/vetta-app/vetta/internal/ratelimit"
	"github.com/vetta-app/vetta/internal/repositories"
	"github.com/vetta-app/vetta/internal/scoring"
	"github.com/vetta-app/vetta/internal/sqlite"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	scorer         scoring.Scorer
	fitChecker     *fitcheck.Checker
	limiter        *ratelimit.Limiter
	idempotency    *ratelimit.IdempotencyCache
	dealers        *repositories.DealerRepository
	assessments    *repositories.AssessmentRepository
	settings       *repositories.SettingsRepository
	questions      *repositories.QuestionRepository
	events         *repositories.EventRepository
}

type config struct {
	Addr          string `env:"VETTA_ADDR" envDefault:"localhost:4000"`
	SQLiteURL     string `env:"VETTA_SQLITE_URL" envDefault:"./vetta.sqlite"`
	OpenAIKey     string `env:"OPENAI_API_KEY" envDefault:""`
	RiskModel     string `env:"VETTA_RISK_MODEL" envDefault:"gpt-4o-mini"`
	RateLimit     string `env:"VETTA_RATE_LIMIT" envDefault:"120"`
	RateLimitSecs string `env:"VETTA_RATE_WINDOW_SECONDS" envDefault:"60"`
}

// run wires the application together and starts the server. The lookupEnv and
// scorer parameters are seams for the tests: they boot the real server on
// localhost:0 with a stubbed model client. A nil scorer means the OpenAI
// client configured from the environment.
func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool), scorer scoring.Scorer) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	rateLimit, err := strconv.Atoi(cfg.RateLimit)
	if err != nil {
		return errors.Wrap(err, "parse rate limit", slog.String("value", cfg.RateLimit))
	}
	rateWindowSecs, err := strconv.Atoi(cfg.RateLimitSecs)
	if err != nil {
		return errors.Wrap(err, "parse rate window", slog.String("value", cfg.RateLimitSecs))
	}

	dbs, err := sqlite.NewDatabase(cfg.SQLiteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SQLiteURL))
	}
	go dbs.StartOptimizer(ctx)

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite.DB, 24*time.Hour)
	sessionManager.Lifetime = 12 * time.Hour

	if scorer == nil {
		scorer = scoring.NewClient(cfg.OpenAIKey, cfg.RiskModel)
	}

	fitChecker, err := fitcheck.New(logger)
	if err != nil {
		return errors.Wrap(err, "initialize fit checker")
	}

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		scorer:         scorer,
		fitChecker:     fitChecker,
		limiter:        ratelimit.NewLimiter(rateLimit, time.Duration(rateWindowSecs)*time.Second),
		idempotency:    ratelimit.NewIdempotencyCache(2 * time.Minute),
		dealers:        repositories.NewDealerRepository(dbs, logger),
		assessments:    repositories.NewAssessmentRepository(dbs, logger),
		settings:       repositories.NewSettingsRepository(dbs, logger),
		questions:      repositories.NewQuestionRepository(dbs, logger),
		events:         repositories.NewEventRepository(dbs, logger),
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}

func main() {
	ctx := context.Background()

	loggerHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})
	logger := slog.New(logging.NewContextHandler(loggerHandler))

	// A missing .env file is fine; production configures the environment
	// directly.
	if err := godotenv.Load(); err != nil {
		logger.LogAttrs(ctx, slog.LevelDebug, "no .env file loaded")
	}

	if err := run(ctx, logger, os.LookupEnv, nil); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server exited", errors.SlogError(err))
		os.Exit(1)
	}
}
