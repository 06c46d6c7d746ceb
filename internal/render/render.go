// Package render turns questions into presentation-neutral views. Views are
// consumed by the websocket transport (as JSON) and the terminal player.
package render

import "assessment-engine/internal/domain"

// Control is the kind of input a question asks for.
type Control string

const (
	ControlSingle   Control = "single"
	ControlMultiple Control = "multiple"
	ControlInline   Control = "inline_text"
	ControlTextArea Control = "text_area"
)

// OptionState marks options in results mode.
type OptionState string

const (
	StateNeutral   OptionState = ""
	StateCorrect   OptionState = "correct"
	StateIncorrect OptionState = "incorrect"
)

const (
	multiSelectHint   = "Select all that apply"
	fillBlankTitle    = "Fill in the blank"
	inlinePlaceholder = "Your answer"
	areaPlaceholder   = "Type your answer here..."
)

// OptionView is one selectable option.
type OptionView struct {
	ID       string      `json:"id"`
	Label    string      `json:"label"`
	Selected bool        `json:"selected"`
	State    OptionState `json:"state,omitempty"`
}

// QuestionView is everything needed to draw a question. Correctness data is
// only populated when Results is true.
type QuestionView struct {
	ID          string              `json:"id"`
	Type        domain.QuestionType `json:"type"`
	Title       string              `json:"title"`
	Points      int                 `json:"points"`
	Control     Control             `json:"control"`
	Hint        string              `json:"hint,omitempty"`
	Options     []OptionView        `json:"options,omitempty"`
	Prefix      string              `json:"prefix,omitempty"`
	Suffix      string              `json:"suffix,omitempty"`
	Value       string              `json:"value,omitempty"`
	Placeholder string              `json:"placeholder,omitempty"`
	Disabled    bool                `json:"disabled"`

	Results       bool           `json:"results"`
	Verdict       domain.Verdict `json:"verdict,omitempty"`
	CorrectAnswer string         `json:"correctAnswer,omitempty"`
	SampleAnswer  string         `json:"sampleAnswer,omitempty"`
	Explanation   string         `json:"explanation,omitempty"`
}

// Question renders q with the user's current response. It reads its inputs
// only; answer changes travel back through the session, never through the view.
func Question(q domain.Question, current domain.Response, results bool) QuestionView {
	h := q.Head()
	view := QuestionView{
		ID:       h.ID,
		Type:     q.Type(),
		Title:    h.Text,
		Points:   h.Points,
		Results:  results,
		Disabled: results,
	}
	if results {
		view.Verdict = q.Judge(current)
		view.Explanation = h.Explanation
	}

	switch v := q.(type) {
	case domain.SingleChoice:
		view.Control = ControlSingle
		view.Options = choiceOptions(v.Options, current, results)
	case domain.MultipleChoice:
		view.Control = ControlMultiple
		view.Hint = multiSelectHint
		view.Options = choiceOptions(v.Options, current, results)
	case domain.TrueFalse:
		view.Control = ControlSingle
		view.Options = choiceOptions([]domain.Option{
			{ID: "true", Text: "True", Correct: v.Correct},
			{ID: "false", Text: "False", Correct: !v.Correct},
		}, current, results)
	case domain.FillBlank:
		view.Control = ControlInline
		view.Title = fillBlankTitle
		view.Prefix, view.Suffix = v.Prompt()
		view.Value = current.Value
		view.Placeholder = inlinePlaceholder
		if results && view.Verdict != domain.VerdictCorrect && len(v.Accepted) > 0 {
			view.CorrectAnswer = v.Accepted[0]
		}
	case domain.ShortAnswer:
		view.Control = ControlTextArea
		view.Value = current.Value
		view.Placeholder = areaPlaceholder
		if results {
			view.SampleAnswer = v.SampleAnswer
		}
	}
	return view
}

func choiceOptions(options []domain.Option, current domain.Response, results bool) []OptionView {
	out := make([]OptionView, 0, len(options))
	for _, opt := range options {
		ov := OptionView{ID: opt.ID, Label: opt.Text, Selected: current.Has(opt.ID)}
		if results {
			switch {
			case opt.Correct:
				ov.State = StateCorrect
			case ov.Selected:
				ov.State = StateIncorrect
			}
		}
		out = append(out, ov)
	}
	return out
}
