package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	pgstore "trivia-quiz-service/internal/infra/postgres"
	redisinfra "trivia-quiz-service/internal/infra/redis"
	"trivia-quiz-service/internal/source"
)

// NewSeedCmd stores the built-in question set in Postgres so it can be
// edited there and served as the fallback bank.
func NewSeedCmd(configPath *string) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the built-in fallback questions into the question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			if name == "" {
				name = cfg.Quiz.FallbackSet
			}
			if name == "" {
				name = "fallback"
			}

			ctx := cmd.Context()
			if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
				return err
			}
			b, err := connectBackends(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			if err := pgstore.NewQuestionSetStore(b.pool).SaveQuestionSet(ctx, name, source.Fallback()); err != nil {
				return err
			}
			if b.redis != nil {
				// drop any cached copy so running servers pick up the new set
				if err := redisinfra.NewQuestionBank(b.redis, nil, 0, logger).Invalidate(ctx, name); err != nil {
					logger.Warn("invalidate cached question set", "set", name, "error", err)
				}
			}
			logger.Info("question set seeded", "set", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "question set name (defaults to quiz.fallback_set)")
	return cmd
}
