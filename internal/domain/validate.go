package domain

import (
	"fmt"
	"strings"
)

// Validate rejects quizzes the engine cannot score: no questions, duplicate ids,
// non-positive points, choice questions without a correct option, and
// fill-in-the-blank prompts without exactly one blank.
func (q Quiz) Validate() error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if q.ID == "" {
		addf("quiz id is empty")
	}
	if q.PassingScore < 0 || q.PassingScore > 100 {
		addf("passing score %d outside 0-100", q.PassingScore)
	}
	if q.TimeLimit < 0 {
		addf("time limit %d is negative", q.TimeLimit)
	}
	if len(q.Questions) == 0 {
		addf("quiz has no questions")
	}

	seen := make(map[string]struct{}, len(q.Questions))
	for i, question := range q.Questions {
		h := question.Head()
		if h.ID == "" {
			addf("question #%d has no id", i+1)
		} else if _, dup := seen[h.ID]; dup {
			addf("duplicate question id %q", h.ID)
		}
		seen[h.ID] = struct{}{}
		if h.Points <= 0 {
			addf("question %q: points must be > 0, got %d", h.ID, h.Points)
		}
		for _, p := range questionProblems(question) {
			addf("question %q: %s", h.ID, p)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{QuizID: q.ID, Problems: problems}
	}
	return nil
}

func questionProblems(q Question) []string {
	var problems []string
	switch v := q.(type) {
	case SingleChoice:
		problems = append(problems, optionProblems(v.Options)...)
		if v.CorrectOptionID() == "" && len(v.Options) > 0 {
			problems = append(problems, "no option marked correct")
		}
	case MultipleChoice:
		problems = append(problems, optionProblems(v.Options)...)
		if len(v.CorrectOptionIDs()) == 0 && len(v.Options) > 0 {
			problems = append(problems, "no option marked correct")
		}
	case TrueFalse:
	case FillBlank:
		if n := strings.Count(v.Text, BlankMarker); n != 1 {
			problems = append(problems, fmt.Sprintf("prompt must contain exactly one %s blank, found %d", BlankMarker, n))
		}
		accepted := 0
		for _, a := range v.Accepted {
			if Normalize(a) != "" {
				accepted++
			}
		}
		if accepted == 0 {
			problems = append(problems, "no accepted answer")
		}
	case ShortAnswer:
	default:
		problems = append(problems, fmt.Sprintf("%v %T", ErrUnsupportedQuestionType, q))
	}
	return problems
}

func optionProblems(options []Option) []string {
	if len(options) == 0 {
		return []string{"choice question has no options"}
	}
	var problems []string
	seen := make(map[string]struct{}, len(options))
	for _, opt := range options {
		if opt.ID == "" {
			problems = append(problems, "option without id")
			continue
		}
		if _, dup := seen[opt.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate option id %q", opt.ID))
		}
		seen[opt.ID] = struct{}{}
	}
	return problems
}
