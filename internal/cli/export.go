package cli

import (
	"fmt"
	"log"
	"os"

	"assessment-engine/internal/config"
	"assessment-engine/internal/report"
	"github.com/spf13/cobra"
)

// NewExportCmd writes a quiz's recorded attempts to a spreadsheet.
func NewExportCmd(configPath *string) *cobra.Command {
	var quizID, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recorded attempts of a quiz to an .xlsx file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			b, err := openBackends(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			service, err := b.attemptService()
			if err != nil {
				return err
			}
			quiz, err := service.Quiz(cmd.Context(), quizID)
			if err != nil {
				return err
			}
			attempts, err := service.Attempts(cmd.Context(), quizID)
			if err != nil {
				return err
			}

			if out == "" {
				out = quizID + "-attempts.xlsx"
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := report.WriteAttemptsXLSX(f, quiz, attempts); err != nil {
				f.Close()
				return fmt.Errorf("write %s: %w", out, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			log.Printf("exported %d attempts of %s to %s", len(attempts), quizID, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", "", "quiz id")
	cmd.Flags().StringVar(&out, "out", "", "output file (default <quiz>-attempts.xlsx)")
	_ = cmd.MarkFlagRequired("quiz")
	return cmd
}
