package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/searcher"
)

type matchReport struct {
	ID     int      `json:"id"`
	Query  string   `json:"query"`
	Terms  []string `json:"terms"`
	Status string   `json:"status"`
}

func newMatchCommand(a *app) *cobra.Command {
	var id int
	var output string
	cmd := &cobra.Command{
		Use:   "match <query>",
		Short: "List the query terms found in one document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			server, _, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			raw := strings.Join(args, " ")
			match := server.MatchDocument
			if a.policy == searcher.Parallel {
				match = server.MatchDocumentParallel
			}
			terms, status, err := match(raw, id)
			if err != nil {
				return err
			}
			report := matchReport{ID: id, Query: raw, Terms: terms, Status: status.String()}
			if output == "json" {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				printf(cmd, "{ document_id = %d, status = %s, words = %s }\n", id, report.Status, strings.Join(terms, " "))
			}
			return a.finish(cmd)
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "document id")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format (json|text)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
