package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// typeAliases maps legacy type names onto the implemented variants.
var typeAliases = map[QuestionType]QuestionType{
	"multiple_answer": TypeMultipleChoice,
}

type quizWire struct {
	ID               string         `json:"id" yaml:"id"`
	Title            string         `json:"title" yaml:"title"`
	Description      string         `json:"description,omitempty" yaml:"description,omitempty"`
	TimeLimit        int            `json:"timeLimit,omitempty" yaml:"timeLimit,omitempty"`
	PassingScore     int            `json:"passingScore" yaml:"passingScore"`
	ShuffleQuestions bool           `json:"shuffleQuestions" yaml:"shuffleQuestions"`
	ShowResults      bool           `json:"showResults" yaml:"showResults"`
	AllowRetry       bool           `json:"allowRetry" yaml:"allowRetry"`
	Questions        []questionWire `json:"questions" yaml:"questions"`
}

type questionWire struct {
	ID            string       `json:"id" yaml:"id"`
	Type          QuestionType `json:"type" yaml:"type"`
	Text          string       `json:"text" yaml:"text"`
	Points        int          `json:"points" yaml:"points"`
	Explanation   string       `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Answers       []Option     `json:"answers,omitempty" yaml:"answers,omitempty"`
	CorrectAnswer stringList   `json:"correctAnswer,omitempty" yaml:"correctAnswer,omitempty"`
}

// stringList decodes either a single string or a list of strings.
type stringList []string

func (l stringList) MarshalJSON() ([]byte, error) {
	if len(l) == 1 {
		return json.Marshal(l[0])
	}
	return json.Marshal([]string(l))
}

func (l *stringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = stringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("correctAnswer must be a string or list of strings: %w", err)
	}
	*l = many
	return nil
}

func (l stringList) MarshalYAML() (interface{}, error) {
	if len(l) == 1 {
		return l[0], nil
	}
	return []string(l), nil
}

func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*l = stringList{node.Value}
		return nil
	}
	var many []string
	if err := node.Decode(&many); err != nil {
		return fmt.Errorf("correctAnswer must be a string or list of strings: %w", err)
	}
	*l = many
	return nil
}

func (q Quiz) MarshalJSON() ([]byte, error) {
	w, err := q.toWire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

func (q *Quiz) UnmarshalJSON(data []byte) error {
	var w quizWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	return q.fromWire(w)
}

func (q Quiz) MarshalYAML() (interface{}, error) {
	return q.toWire()
}

func (q *Quiz) UnmarshalYAML(node *yaml.Node) error {
	var w quizWire
	if err := node.Decode(&w); err != nil {
		return err
	}
	return q.fromWire(w)
}

func (q *Quiz) fromWire(w quizWire) error {
	questions := make([]Question, 0, len(w.Questions))
	for _, qw := range w.Questions {
		question, err := qw.toQuestion()
		if err != nil {
			return err
		}
		questions = append(questions, question)
	}
	*q = Quiz{
		ID:               w.ID,
		Title:            w.Title,
		Description:      w.Description,
		TimeLimit:        w.TimeLimit,
		PassingScore:     w.PassingScore,
		ShuffleQuestions: w.ShuffleQuestions,
		ShowResults:      w.ShowResults,
		AllowRetry:       w.AllowRetry,
		Questions:        questions,
	}
	return nil
}

func (q Quiz) toWire() (quizWire, error) {
	w := quizWire{
		ID:               q.ID,
		Title:            q.Title,
		Description:      q.Description,
		TimeLimit:        q.TimeLimit,
		PassingScore:     q.PassingScore,
		ShuffleQuestions: q.ShuffleQuestions,
		ShowResults:      q.ShowResults,
		AllowRetry:       q.AllowRetry,
		Questions:        make([]questionWire, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		qw, err := questionToWire(question)
		if err != nil {
			return quizWire{}, err
		}
		w.Questions = append(w.Questions, qw)
	}
	return w, nil
}

func (w questionWire) toQuestion() (Question, error) {
	h := Header{ID: w.ID, Text: w.Text, Points: w.Points, Explanation: w.Explanation}
	typ := w.Type
	if alias, ok := typeAliases[typ]; ok {
		typ = alias
	}

	switch typ {
	case TypeSingleChoice:
		return SingleChoice{Header: h, Options: w.Answers}, nil
	case TypeMultipleChoice:
		return MultipleChoice{Header: h, Options: w.Answers}, nil
	case TypeTrueFalse:
		correct, err := w.trueFalseAnswer()
		if err != nil {
			return nil, err
		}
		return TrueFalse{Header: h, Correct: correct}, nil
	case TypeFillBlank:
		return FillBlank{Header: h, Accepted: append([]string{}, w.CorrectAnswer...)}, nil
	case TypeShortAnswer:
		sample := ""
		if len(w.CorrectAnswer) > 0 {
			sample = w.CorrectAnswer[0]
		}
		return ShortAnswer{Header: h, SampleAnswer: sample}, nil
	default:
		return nil, fmt.Errorf("question %q: %w %q", w.ID, ErrUnsupportedQuestionType, w.Type)
	}
}

// trueFalseAnswer reads correctAnswer, falling back to an option flagged
// correct whose id is "true" or "false".
func (w questionWire) trueFalseAnswer() (bool, error) {
	raw := ""
	if len(w.CorrectAnswer) > 0 {
		raw = w.CorrectAnswer[0]
	} else {
		for _, opt := range w.Answers {
			if opt.Correct {
				raw = opt.ID
				break
			}
		}
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("question %q: %w: true_false correctAnswer must be \"true\" or \"false\", got %q", w.ID, ErrInvalidQuiz, raw)
	}
}

func questionToWire(q Question) (questionWire, error) {
	h := q.Head()
	w := questionWire{ID: h.ID, Type: q.Type(), Text: h.Text, Points: h.Points, Explanation: h.Explanation}
	switch v := q.(type) {
	case SingleChoice:
		w.Answers = v.Options
	case MultipleChoice:
		w.Answers = v.Options
	case TrueFalse:
		w.CorrectAnswer = stringList{v.CorrectValue()}
	case FillBlank:
		w.CorrectAnswer = stringList(v.Accepted)
	case ShortAnswer:
		if v.SampleAnswer != "" {
			w.CorrectAnswer = stringList{v.SampleAnswer}
		}
	default:
		return questionWire{}, fmt.Errorf("question %q: %w %T", h.ID, ErrUnsupportedQuestionType, q)
	}
	return w, nil
}
