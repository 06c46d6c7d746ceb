package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"assessment-engine/internal/config"
	"assessment-engine/internal/infra/file"
	pgstore "assessment-engine/internal/infra/postgres"
	pgmigrations "assessment-engine/internal/infra/postgres/migrations"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// NewMigrateCmd applies database migrations and optionally seeds quizzes.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seedDir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg); err != nil {
				return err
			}
			if seedDir == "" {
				return nil
			}
			return seedQuizzes(cmd.Context(), cfg, seedDir)
		},
	}
	cmd.Flags().StringVar(&seedDir, "seed", "", "directory of YAML/JSON quizzes to upsert after migrating")
	return cmd
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Printf("no new migrations")
		return nil
	}
	log.Printf("migrated to %s", group)
	return nil
}

// seedQuizzes validates every quiz in dir before writing any of them.
func seedQuizzes(ctx context.Context, cfg config.Config, dir string) error {
	quizzes, err := file.NewQuizLoader(dir).List(ctx)
	if err != nil {
		return err
	}
	for _, quiz := range quizzes {
		if err := quiz.Validate(); err != nil {
			return fmt.Errorf("quiz %s: %w", quiz.ID, err)
		}
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	loader := pgstore.NewQuizLoader(pool)
	for _, quiz := range quizzes {
		if err := loader.SaveQuiz(ctx, quiz); err != nil {
			return fmt.Errorf("seed quiz %s: %w", quiz.ID, err)
		}
		log.Printf("seeded quiz %s (%d questions)", quiz.ID, len(quiz.Questions))
	}
	return nil
}
