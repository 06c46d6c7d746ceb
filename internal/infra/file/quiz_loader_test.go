package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"assessment-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlQuiz = `
id: go-basics
title: Go basics
passingScore: 50
questions:
  - id: q1
    type: true_false
    text: Go has goroutines
    points: 1
    correctAnswer: "true"
`

const jsonQuiz = `{"id":"json-quiz","title":"JSON","passingScore":60,"questions":[
  {"id":"q1","type":"fill_blank","text":"___ is a gopher","points":1,"correctAnswer":"Go"}]}`

func writeDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestLoadQuizByIDAcrossFormats(t *testing.T) {
	dir := writeDir(t, map[string]string{
		"basics.yaml": yamlQuiz,
		"other.json":  jsonQuiz,
		"notes.txt":   "ignored",
		"broken.yml":  "id: [",
	})
	loader := NewQuizLoader(dir)

	quiz, err := loader.LoadQuiz(context.Background(), "go-basics")
	require.NoError(t, err)
	assert.Equal(t, "Go basics", quiz.Title)
	assert.IsType(t, domain.TrueFalse{}, quiz.Questions[0])

	quiz, err = loader.LoadQuiz(context.Background(), "json-quiz")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, quiz.Questions[0].(domain.FillBlank).Accepted)

	_, err = loader.LoadQuiz(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrQuizNotFound))
}

func TestListFailsOnBrokenFile(t *testing.T) {
	ok := NewQuizLoader(writeDir(t, map[string]string{"a.yaml": yamlQuiz, "b.json": jsonQuiz}))
	quizzes, err := ok.List(context.Background())
	require.NoError(t, err)
	require.Len(t, quizzes, 2)
	assert.Equal(t, "go-basics", quizzes[0].ID)

	broken := NewQuizLoader(writeDir(t, map[string]string{"a.yaml": yamlQuiz, "z.yml": "id: ["}))
	_, err = broken.List(context.Background())
	assert.Error(t, err)
}
