package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteText draws a view for a terminal. Choice options are numbered from 1
// so players can answer by number.
func WriteText(w io.Writer, view QuestionView) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s (%d pt)\n", view.Title, view.Points)
	if view.Hint != "" {
		fmt.Fprintf(bw, "  %s\n", view.Hint)
	}

	switch view.Control {
	case ControlSingle, ControlMultiple:
		for i, opt := range view.Options {
			fmt.Fprintf(bw, "  %s %d. %s%s\n", marker(view.Control, opt.Selected), i+1, opt.Label, stateSuffix(opt.State))
		}
	case ControlInline:
		value := view.Value
		if value == "" {
			value = strings.Repeat("_", 8)
		}
		fmt.Fprintf(bw, "  %s[%s]%s\n", view.Prefix, value, view.Suffix)
	case ControlTextArea:
		if view.Value != "" {
			fmt.Fprintf(bw, "  > %s\n", view.Value)
		} else {
			fmt.Fprintf(bw, "  (%s)\n", view.Placeholder)
		}
	}

	if view.Results {
		fmt.Fprintf(bw, "  Result: %s\n", view.Verdict)
		if view.CorrectAnswer != "" {
			fmt.Fprintf(bw, "  Correct answer: %s\n", view.CorrectAnswer)
		}
		if view.SampleAnswer != "" {
			fmt.Fprintf(bw, "  Sample answer: %s\n", view.SampleAnswer)
		}
		if view.Explanation != "" {
			fmt.Fprintf(bw, "  Explanation: %s\n", view.Explanation)
		}
	}
	return bw.Flush()
}

func marker(control Control, selected bool) string {
	switch {
	case control == ControlMultiple && selected:
		return "[x]"
	case control == ControlMultiple:
		return "[ ]"
	case selected:
		return "(*)"
	default:
		return "( )"
	}
}

func stateSuffix(state OptionState) string {
	switch state {
	case StateCorrect:
		return "  ✓"
	case StateIncorrect:
		return "  ✗"
	default:
		return ""
	}
}
