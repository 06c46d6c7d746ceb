package domain

import "slices"

// QuestionType is the wire tag of a question variant.
type QuestionType string

const (
	TypeSingleChoice   QuestionType = "single_choice"
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeTrueFalse      QuestionType = "true_false"
	TypeFillBlank      QuestionType = "fill_blank"
	TypeShortAnswer    QuestionType = "short_answer"

	// Reserved: accepted by the type system, no rendering or scoring rules exist.
	TypeMatching QuestionType = "matching"
	TypeOrdering QuestionType = "ordering"
)

// BlankMarker splits a fill-in-the-blank prompt into prefix and suffix.
const BlankMarker = "___"

// Verdict is the per-question correctness outcome.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
	VerdictUngraded  Verdict = "ungraded"
)

// Header carries the fields shared by every question variant.
type Header struct {
	ID          string
	Text        string
	Points      int
	Explanation string
}

// Question is a closed set of variants; only types in this package implement it.
type Question interface {
	Head() Header
	Type() QuestionType
	// Judge reports whether the response is correct for this question.
	Judge(r Response) Verdict
	question()
}

// Option represents a selectable answer for choice questions.
type Option struct {
	ID      string `json:"id" yaml:"id"`
	Text    string `json:"text" yaml:"text"`
	Correct bool   `json:"isCorrect" yaml:"isCorrect"`
}

// SingleChoice accepts exactly one option id.
type SingleChoice struct {
	Header
	Options []Option
}

// MultipleChoice accepts a set of option ids and is graded all-or-nothing.
type MultipleChoice struct {
	Header
	Options []Option
}

// TrueFalse accepts "true" or "false".
type TrueFalse struct {
	Header
	Correct bool
}

// FillBlank accepts free text compared after normalization.
type FillBlank struct {
	Header
	Accepted []string
}

// ShortAnswer accepts free text that is never auto-graded.
type ShortAnswer struct {
	Header
	SampleAnswer string
}

func (q SingleChoice) Head() Header   { return q.Header }
func (q MultipleChoice) Head() Header { return q.Header }
func (q TrueFalse) Head() Header      { return q.Header }
func (q FillBlank) Head() Header      { return q.Header }
func (q ShortAnswer) Head() Header    { return q.Header }

func (SingleChoice) Type() QuestionType   { return TypeSingleChoice }
func (MultipleChoice) Type() QuestionType { return TypeMultipleChoice }
func (TrueFalse) Type() QuestionType      { return TypeTrueFalse }
func (FillBlank) Type() QuestionType      { return TypeFillBlank }
func (ShortAnswer) Type() QuestionType    { return TypeShortAnswer }

func (SingleChoice) question()   {}
func (MultipleChoice) question() {}
func (TrueFalse) question()      {}
func (FillBlank) question()      {}
func (ShortAnswer) question()    {}

// CorrectOptionID returns the first option marked correct.
func (q SingleChoice) CorrectOptionID() string {
	for _, opt := range q.Options {
		if opt.Correct {
			return opt.ID
		}
	}
	return ""
}

func (q SingleChoice) Judge(r Response) Verdict {
	want := q.CorrectOptionID()
	if want != "" && r.Value == want {
		return VerdictCorrect
	}
	return VerdictIncorrect
}

// CorrectOptionIDs returns the ids of every option marked correct, in option order.
func (q MultipleChoice) CorrectOptionIDs() []string {
	ids := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		if opt.Correct {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

func (q MultipleChoice) Judge(r Response) Verdict {
	want := toSet(q.CorrectOptionIDs())
	got := toSet(r.Values)
	if len(want) == 0 || len(want) != len(got) {
		return VerdictIncorrect
	}
	for id := range want {
		if _, ok := got[id]; !ok {
			return VerdictIncorrect
		}
	}
	return VerdictCorrect
}

// CorrectValue is the option id ("true" or "false") holding the right answer.
func (q TrueFalse) CorrectValue() string {
	if q.Correct {
		return "true"
	}
	return "false"
}

func (q TrueFalse) Judge(r Response) Verdict {
	if r.Value == q.CorrectValue() {
		return VerdictCorrect
	}
	return VerdictIncorrect
}

// Prompt splits the question text around the blank marker.
func (q FillBlank) Prompt() (prefix, suffix string) {
	prefix, suffix, _ = cutBlank(q.Text)
	return prefix, suffix
}

func (q FillBlank) Judge(r Response) Verdict {
	got := Normalize(r.Value)
	if got == "" {
		return VerdictIncorrect
	}
	if slices.ContainsFunc(q.Accepted, func(a string) bool { return Normalize(a) == got }) {
		return VerdictCorrect
	}
	return VerdictIncorrect
}

func (ShortAnswer) Judge(Response) Verdict {
	return VerdictUngraded
}

// HasOption reports whether optionID belongs to a choice question.
func HasOption(q Question, optionID string) bool {
	switch v := q.(type) {
	case SingleChoice:
		return slices.ContainsFunc(v.Options, func(o Option) bool { return o.ID == optionID })
	case MultipleChoice:
		return slices.ContainsFunc(v.Options, func(o Option) bool { return o.ID == optionID })
	case TrueFalse:
		return optionID == "true" || optionID == "false"
	default:
		return false
	}
}

func toSet(ids []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}
