package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"assessment-engine/internal/config"
	"assessment-engine/internal/infra/file"
	"assessment-engine/internal/infra/memory"
	"assessment-engine/internal/infra/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendsPickConfiguredStores(t *testing.T) {
	ctx := context.Background()

	var cfg config.Config
	b, err := openBackends(ctx, cfg)
	require.NoError(t, err)
	defer b.Close()

	store, err := b.attemptStore()
	require.NoError(t, err)
	assert.IsType(t, &memory.AttemptStore{}, store)
	assert.IsType(t, &memory.StaticQuizLoader{}, b.quizLoader())

	service, err := b.attemptService()
	require.NoError(t, err)
	quiz, err := service.Quiz(ctx, "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", quiz.Title)

	cfg.Quiz.Dir = t.TempDir()
	cfg.Attempts.Store = config.StoreSQLite
	cfg.SQLite.DSN = "file:" + filepath.Join(t.TempDir(), "attempts.db")
	b2, err := openBackends(ctx, cfg)
	require.NoError(t, err)
	defer b2.Close()

	store, err = b2.attemptStore()
	require.NoError(t, err)
	assert.IsType(t, &sqlite.AttemptStore{}, store)
	assert.IsType(t, &file.QuizLoader{}, b2.quizLoader())
}

func TestBackendsRejectMisconfiguredStore(t *testing.T) {
	var cfg config.Config
	cfg.Attempts.Store = config.StorePostgres
	b, err := openBackends(context.Background(), cfg)
	require.NoError(t, err)
	defer b.Close()

	_, err = b.attemptStore()
	assert.Error(t, err)

	b.cfg.Attempts.Store = "cassandra"
	_, err = b.attemptStore()
	assert.ErrorContains(t, err, "unknown attempt store")
}

func TestBundledQuizFilesLoad(t *testing.T) {
	dir := filepath.Join("..", "..", "quizzes")
	if _, err := os.Stat(dir); err != nil {
		t.Skip("quizzes directory not present")
	}
	quizzes, err := file.NewQuizLoader(dir).List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, quizzes)
	for _, quiz := range quizzes {
		assert.NoError(t, quiz.Validate(), quiz.ID)
	}
}
