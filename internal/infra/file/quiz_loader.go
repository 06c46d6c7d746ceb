// Package file loads quiz definitions from YAML or JSON files on disk.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"assessment-engine/internal/domain"
	"gopkg.in/yaml.v3"
)

// QuizLoader reads quizzes from a directory. A quiz is looked up by its id
// field, not its file name, although <id>.yaml, <id>.yml and <id>.json are
// tried first.
type QuizLoader struct {
	dir string
}

func NewQuizLoader(dir string) *QuizLoader {
	return &QuizLoader{dir: dir}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(l.dir, quizID+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		quiz, err := LoadFile(path)
		if err != nil {
			return domain.Quiz{}, err
		}
		if quiz.ID == quizID {
			return quiz, nil
		}
	}

	paths, err := l.paths()
	if err != nil {
		return domain.Quiz{}, err
	}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return domain.Quiz{}, err
		}
		quiz, err := LoadFile(path)
		if err != nil {
			log.Printf("skip quiz file %s: %v", path, err)
			continue
		}
		if quiz.ID == quizID {
			return quiz, nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// List decodes every quiz file in the directory. Any decoding failure aborts.
func (l *QuizLoader) List(ctx context.Context) ([]domain.Quiz, error) {
	paths, err := l.paths()
	if err != nil {
		return nil, err
	}
	quizzes := make([]domain.Quiz, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		quiz, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

func (l *QuizLoader) paths() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read quiz dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !isQuizFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(l.dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadFile decodes a single quiz file, choosing the codec by extension.
func LoadFile(path string) (domain.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("read quiz file: %w", err)
	}

	var quiz domain.Quiz
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &quiz)
	default:
		err = yaml.Unmarshal(data, &quiz)
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return quiz, nil
}

func isQuizFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
