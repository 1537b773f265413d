package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/metrics"
)

// NewGenerateCmd runs one question load and prints the normalized set. It is
// the quickest way to check provider credentials and prompt changes.
func NewGenerateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Load one question set and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			b, err := connectBackends(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			src := newSource(ctx, cfg, b.questionBank(cfg, logger), logger, metrics.New())
			set, loadErr := src.Load(ctx)
			if loadErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "fallback used: %v\n", loadErr)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(set)
		},
	}
}
