package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"assessment-engine/internal/app"
	"assessment-engine/internal/config"
	"assessment-engine/internal/domain"
	"assessment-engine/internal/infra/file"
	"assessment-engine/internal/infra/memory"
	pgstore "assessment-engine/internal/infra/postgres"
	redisstore "assessment-engine/internal/infra/redis"
	"assessment-engine/internal/infra/sqlite"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// backends holds the external connections shared by the commands. Each is
// nil when not configured.
type backends struct {
	cfg    config.Config
	pool   *pgxpool.Pool
	redis  *redis.Client
	sqlite *sql.DB
}

func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{cfg: cfg}
	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.pool = pool
	}
	if cfg.AttemptStore() == config.StoreSQLite {
		db, err := sqlite.Open(ctx, cfg.SQLite.DSN)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		b.sqlite = db
	}
	return b, nil
}

func (b *backends) Close() {
	if b.sqlite != nil {
		_ = b.sqlite.Close()
	}
	if b.pool != nil {
		b.pool.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
}

// quizLoader prefers Postgres, then a quiz directory, then the built-in sample.
func (b *backends) quizLoader() memory.QuizLoader {
	switch {
	case b.pool != nil:
		return pgstore.NewQuizLoader(b.pool)
	case b.cfg.Quiz.Dir != "":
		return file.NewQuizLoader(b.cfg.Quiz.Dir)
	default:
		log.Printf("no quiz source configured, serving the built-in sample quiz")
		return memory.NewStaticQuizLoader(sampleQuizzes()...)
	}
}

func (b *backends) quizRepository() app.QuizRepository {
	ttl := config.TTLDuration(b.cfg.Quiz.TTL, 10*time.Minute)
	if b.redis != nil {
		return redisstore.NewQuizRepository(b.redis, b.quizLoader(), ttl)
	}
	return memory.NewQuizRepository(b.quizLoader(), ttl)
}

func (b *backends) sessionStore() app.SessionRepository {
	if b.redis != nil {
		return redisstore.NewSessionStore(b.redis, config.TTLDuration(b.cfg.Redis.TTL, 10*time.Minute))
	}
	return memory.NewSessionStore()
}

func (b *backends) attemptStore() (app.AttemptRepository, error) {
	switch store := b.cfg.AttemptStore(); store {
	case config.StorePostgres:
		if b.pool == nil {
			return nil, fmt.Errorf("attempt store %q needs postgres.url", store)
		}
		return pgstore.NewAttemptStore(b.pool), nil
	case config.StoreSQLite:
		return sqlite.NewAttemptStore(b.sqlite), nil
	case config.StoreMemory:
		return memory.NewAttemptStore(), nil
	default:
		return nil, fmt.Errorf("unknown attempt store %q", store)
	}
}

// attemptService wires the configured repositories.
func (b *backends) attemptService(opts ...app.Option) (*app.AttemptService, error) {
	attempts, err := b.attemptStore()
	if err != nil {
		return nil, err
	}
	if tick := b.cfg.Timer.Tick; tick != "" {
		interval := config.TTLDuration(tick, time.Second)
		opts = append([]app.Option{app.WithTickInterval(interval)}, opts...)
	}
	return app.NewAttemptService(b.sessionStore(), b.quizRepository(), attempts, opts...), nil
}

// sampleQuizzes is served when no quiz source is configured.
func sampleQuizzes() []domain.Quiz {
	return []domain.Quiz{{
		ID:           "quiz-1",
		Title:        "Go Basics",
		Description:  "A short warm-up.",
		PassingScore: 60,
		ShowResults:  true,
		AllowRetry:   true,
		Questions: []domain.Question{
			domain.SingleChoice{
				Header: domain.Header{ID: "q1", Text: "What is 2 + 2?", Points: 1},
				Options: []domain.Option{
					{ID: "o1", Text: "3"},
					{ID: "o2", Text: "4", Correct: true},
					{ID: "o3", Text: "5"},
				},
			},
			domain.MultipleChoice{
				Header: domain.Header{ID: "q2", Text: "Which are Go keywords?", Points: 2},
				Options: []domain.Option{
					{ID: "a", Text: "defer", Correct: true},
					{ID: "b", Text: "select", Correct: true},
					{ID: "c", Text: "yield"},
				},
			},
			domain.TrueFalse{
				Header:  domain.Header{ID: "q3", Text: "Maps are safe for concurrent writes.", Points: 1, Explanation: "Guard them with a mutex."},
				Correct: false,
			},
			domain.FillBlank{
				Header:   domain.Header{ID: "q4", Text: "Goroutines communicate over ___.", Points: 1},
				Accepted: []string{"channels", "channel"},
			},
			domain.ShortAnswer{
				Header:       domain.Header{ID: "q5", Text: "Why return errors instead of panicking?", Points: 1},
				SampleAnswer: "Errors are values the caller can handle.",
			},
		},
	}}
}
