package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"assessment-engine/internal/app"
	"assessment-engine/internal/domain"
	"assessment-engine/internal/infra/file"
	"assessment-engine/internal/infra/sqlite"
	"assessment-engine/internal/render"
	"assessment-engine/internal/report"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const playHelp = `Answer by typing option numbers ("2", or "1 3" for multi-select) or free text.
Commands: :n next  :p previous  :g N go to question N  :f flag  :s submit  :r retry  :q quit`

var errBadChoice = errors.New("answer with option numbers")

// NewPlayCmd runs one quiz file interactively in the terminal.
func NewPlayCmd() *cobra.Command {
	var quizPath, userID, dbDSN string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take a quiz from a YAML/JSON file in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			quiz, err := file.LoadFile(quizPath)
			if err != nil {
				return err
			}
			if err := quiz.Validate(); err != nil {
				return err
			}

			var opts []app.Option
			if dbDSN != "" {
				db, err := sqlite.Open(cmd.Context(), dbDSN)
				if err != nil {
					return err
				}
				defer db.Close()
				store := sqlite.NewAttemptStore(db)
				opts = append(opts, app.WithCompletion(func(result domain.AttemptResult) {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := store.RecordAttempt(ctx, result); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "record attempt: %v\n", err)
					}
				}))
			}
			in := cmd.InOrStdin()
			f, ok := in.(*os.File)
			interactive := ok && term.IsTerminal(int(f.Fd()))
			return runPlay(in, cmd.OutOrStdout(), interactive, quiz, userID, opts...)
		},
	}
	cmd.Flags().StringVar(&quizPath, "quiz", "", "quiz file to play")
	cmd.Flags().StringVar(&userID, "user", os.Getenv("USER"), "user id recorded on the attempt")
	cmd.Flags().StringVar(&dbDSN, "db", "", "sqlite DSN to record attempts in")
	_ = cmd.MarkFlagRequired("quiz")
	return cmd
}

type player struct {
	in      *bufio.Scanner
	out     io.Writer
	prompt  string
	session *app.Session
	done    bool
}

// runPlay drives one session from line-oriented input. interactive adds a
// prompt before each read.
func runPlay(in io.Reader, out io.Writer, interactive bool, quiz domain.Quiz, userID string, opts ...app.Option) error {
	p := &player{
		in:      bufio.NewScanner(in),
		out:     out,
		session: app.NewSession(quiz, userID, opts...),
	}
	if interactive {
		p.prompt = "> "
	}
	defer func() { p.session.Close() }()

	fmt.Fprintf(out, "%s\n%s\n\n", quiz.Title, playHelp)
	p.show()
	for !p.done && p.scan() {
		if err := p.handle(strings.TrimSpace(p.in.Text())); err != nil {
			fmt.Fprintf(out, "! %v\n", err)
		}
		if !p.done {
			p.show()
		}
	}
	return p.in.Err()
}

func (p *player) scan() bool {
	fmt.Fprint(p.out, p.prompt)
	return p.in.Scan()
}

func (p *player) show() {
	snap := p.session.Snapshot()
	if snap.Phase == app.PhaseSubmitted {
		p.showResult()
		return
	}

	status := fmt.Sprintf("Question %d/%d, %d answered", snap.CurrentIndex+1, len(snap.Order), snap.AnsweredCount)
	if snap.RemainingSeconds != nil {
		status += fmt.Sprintf(", %d:%02d left", *snap.RemainingSeconds/60, *snap.RemainingSeconds%60)
	}
	fmt.Fprintf(p.out, "\n%s\n", status)

	q := p.session.Current()
	answer, _ := p.session.Answer(q.Head().ID)
	_ = render.WriteText(p.out, render.Question(q, answer, false))
}

func (p *player) showResult() {
	s := p.reporter().Report()
	fmt.Fprintf(p.out, "\n%s %s\n", s.Headline, s.Message)
	fmt.Fprintf(p.out, "Score: %d%% (%d/%d points, %d of %d correct) in %ds\n",
		s.Score, s.CorrectPoints, s.TotalPoints, s.CorrectCount, s.TotalQuestions, s.TimeSpentSeconds)
	for _, view := range s.Review {
		fmt.Fprintln(p.out)
		_ = render.WriteText(p.out, view)
	}
	if s.CanRetry {
		fmt.Fprintln(p.out, "\n:r to retry, :q to exit")
	} else {
		fmt.Fprintln(p.out, "\n:q to exit")
	}
}

func (p *player) reporter() *report.Reporter {
	result, _ := p.session.Result()
	return report.New(p.session.Quiz(), result, report.Actions{
		Retry: func() error {
			next, err := p.session.Retry()
			if err != nil {
				return err
			}
			p.session = next
			return nil
		},
		Exit: func() error {
			p.done = true
			return nil
		},
	})
}

func (p *player) handle(line string) error {
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, ":") {
		return p.answer(line)
	}

	cmd, arg, _ := strings.Cut(line[1:], " ")
	var err error
	switch cmd {
	case "n", "next":
		_, err = p.session.Next()
	case "p", "prev":
		_, err = p.session.Previous()
	case "g", "goto":
		n, convErr := strconv.Atoi(strings.TrimSpace(arg))
		if convErr != nil {
			return fmt.Errorf("goto needs a question number")
		}
		_, err = p.session.GoTo(n - 1)
	case "f", "flag":
		_, err = p.session.ToggleFlag(p.session.Current().Head().ID)
	case "s", "submit":
		_, err = p.session.Submit()
	case "r", "retry":
		if p.session.Phase() != app.PhaseSubmitted {
			return domain.ErrAttemptInProgress
		}
		err = p.reporter().Retry()
	case "q", "quit":
		if p.session.Phase() == app.PhaseSubmitted {
			return p.reporter().Exit()
		}
		p.done = true
	default:
		return fmt.Errorf("unknown command %q", line)
	}
	return err
}

func (p *player) answer(line string) error {
	q := p.session.Current()
	id := q.Head().ID
	switch q.(type) {
	case domain.FillBlank, domain.ShortAnswer:
		return p.session.SetAnswer(id, domain.Text(line))
	}

	options := render.Question(q, domain.Response{}, false).Options
	for _, field := range strings.Fields(line) {
		n, err := strconv.Atoi(field)
		if err != nil || n < 1 || n > len(options) {
			return errBadChoice
		}
		if err := p.session.Select(id, options[n-1].ID); err != nil {
			return err
		}
	}
	return nil
}
