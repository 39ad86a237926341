package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/health"
)

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the corpus and verify index consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			server, corpus, err := a.load(ctx)
			if err != nil {
				return err
			}

			checker := health.NewChecker()
			checker.Register("index", health.ErrorCheck(server.Verify))
			checker.Register("documents", func(context.Context) health.ComponentHealth {
				count := server.DocumentCount()
				if count < len(corpus.Documents) {
					return health.ComponentHealth{
						Status:  health.StatusDegraded,
						Message: fmt.Sprintf("%d of %d documents indexed", count, len(corpus.Documents)),
					}
				}
				return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d documents indexed", count)}
			})
			checker.Register("queries", func(ctx context.Context) health.ComponentHealth {
				for _, raw := range corpus.Queries {
					if _, err := server.Search(ctx, a.policy, raw, nil); err != nil {
						return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
					}
				}
				return health.ComponentHealth{Status: health.StatusUp}
			})

			report := checker.Run(ctx)
			if err := writeJSON(cmd, report); err != nil {
				return err
			}
			if err := a.finish(cmd); err != nil {
				return err
			}
			if !report.Healthy() {
				return apperrors.New(apperrors.ErrIndexConsistency, report.Components["index"].Message)
			}
			return nil
		},
	}
}
