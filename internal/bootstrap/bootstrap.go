package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/health-assistant/internal/config"
	"github.com/kirillkom/health-assistant/internal/core/domain"
	"github.com/kirillkom/health-assistant/internal/core/ports"
	"github.com/kirillkom/health-assistant/internal/core/retrieval"
	"github.com/kirillkom/health-assistant/internal/core/usecase"
	"github.com/kirillkom/health-assistant/internal/infrastructure/corpus"
	"github.com/kirillkom/health-assistant/internal/infrastructure/lexicon"
	"github.com/kirillkom/health-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/health-assistant/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/health-assistant/internal/infrastructure/repository/sqlite"
	"github.com/kirillkom/health-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/health-assistant/internal/infrastructure/storage/localfs"
)

// BreakerObserver receives circuit breaker transitions.
type BreakerObserver interface {
	SetBreakerState(service, operation string, state int)
}

// ExchangeObserver receives the outcome of every exchange record attempt.
type ExchangeObserver interface {
	RecordExchange(service string, err error)
}

type Options struct {
	Service   string
	Breakers  BreakerObserver
	Exchanges ExchangeObserver
	// RequireQueue connects to NATS even when history is synchronous.
	RequireQueue bool
}

type App struct {
	Config config.Config

	Assistant     *usecase.AssistantUseCase
	Conversations *usecase.ConversationUseCase
	// History is nil when the history backend is disabled.
	History  ports.ExchangeRepository
	Queue    *nats.Queue
	Executor *resilience.Executor

	closeFns []func()
}

// LoadAssistant builds the retrieval engine from the configured lexicon and
// corpus. A missing or unreadable corpus yields an empty engine.
func LoadAssistant(ctx context.Context, cfg config.Config) (*usecase.AssistantUseCase, error) {
	storage := localfs.New("")

	lex, err := lexicon.Load(ctx, storage, cfg.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}

	docs, err := corpus.Load(ctx, storage, cfg.CorpusPath)
	if err != nil {
		slog.WarnContext(ctx, "corpus_load_failed", "path", cfg.CorpusPath, "error", err)
		docs = nil
	} else {
		slog.InfoContext(ctx, "corpus_loaded", "path", cfg.CorpusPath, "documents", len(docs))
	}

	tokenizer := retrieval.NewTokenizer(lex)
	ranker := retrieval.NewRanker(retrieval.NewScorer(tokenizer, lex), docs)
	return usecase.NewAssistantUseCase(ranker, lex.Categories, usecase.AssistantOptions{
		SearchLimit:     cfg.SearchDefaultLimit,
		SuggestionLimit: cfg.SuggestionsDefaultLimit,
	}), nil
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	app := &App{Config: cfg}

	assistant, err := LoadAssistant(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Assistant = assistant

	resilienceCfg := resilienceConfig(cfg)
	app.Executor = resilience.NewExecutor(resilienceCfg, breakerListener(opts))
	interactive := resilience.NewExecutor(resilienceCfg.Interactive(), breakerListener(opts))

	store, err := openHistoryStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	if store != nil {
		app.closeFns = append(app.closeFns, func() { _ = store.db.Close() })
		historyExecutor := interactive
		if opts.RequireQueue {
			// Background consumers get the full retry budget.
			historyExecutor = app.Executor
		}
		app.History = newResilientRepository(store.repo, historyExecutor)
	}

	if cfg.HistoryAsync || opts.RequireQueue {
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: interactive,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		app.Queue = queue
		app.closeFns = append(app.closeFns, queue.Close)
	}

	var recorder ports.ExchangeRecorder
	switch {
	case app.History == nil:
		if cfg.HistoryAsync {
			slog.WarnContext(ctx, "history_async_ignored", "reason", "history backend is disabled")
		}
	case cfg.HistoryAsync:
		recorder = app.Queue
	default:
		recorder = recorderFunc(app.History.Create)
	}
	if recorder != nil && opts.Exchanges != nil {
		recorder = &instrumentedRecorder{next: recorder, observer: opts.Exchanges, service: opts.Service}
	}

	app.Conversations = usecase.NewConversationUseCase(assistant, recorder, app.History, cfg.HistoryPageSize)

	slog.InfoContext(ctx, "bootstrap_ready",
		"corpus_size", assistant.CorpusSize(),
		"history_backend", cfg.HistoryBackend,
		"history_async", cfg.HistoryAsync && app.History != nil,
	)
	return app, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}

type historyStore struct {
	db   *sql.DB
	repo ports.ExchangeRepository
}

func openHistoryStore(ctx context.Context, cfg config.Config) (*historyStore, error) {
	switch cfg.HistoryBackend {
	case config.HistoryBackendNone, "":
		return nil, nil
	case config.HistoryBackendPostgres:
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewExchangeRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return &historyStore{db: db, repo: repo}, nil
	case config.HistoryBackendSQLite:
		db, err := sqlite.OpenDB(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		repo := sqlite.NewExchangeRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return &historyStore{db: db, repo: repo}, nil
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "open history store",
			fmt.Errorf("unknown history backend %q", cfg.HistoryBackend))
	}
}

func resilienceConfig(cfg config.Config) resilience.Config {
	out := resilience.DefaultConfig()
	out.RetryMaxAttempts = cfg.ResilienceRetryMaxAttempts
	out.RetryInitialBackoff = cfg.ResilienceRetryInitialBackoff
	out.RetryMaxBackoff = cfg.ResilienceRetryMaxBackoff
	out.BreakerEnabled = cfg.ResilienceBreakerEnabled
	if cfg.ResilienceBreakerMinRequests > 0 {
		out.BreakerMinRequests = uint32(cfg.ResilienceBreakerMinRequests)
	}
	out.BreakerFailureRatio = cfg.ResilienceBreakerFailureRatio
	out.BreakerOpenTimeout = cfg.ResilienceBreakerOpenTimeout
	return out
}

func breakerListener(opts Options) resilience.Option {
	return resilience.WithStateListener(func(operation string, state gobreaker.State) {
		if opts.Breakers != nil {
			opts.Breakers.SetBreakerState(opts.Service, operation, int(state))
		}
	})
}
