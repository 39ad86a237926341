package main

import (
	"github.com/spf13/cobra"
)

type dedupReport struct {
	Removed   []int `json:"removed"`
	Remaining []int `json:"remaining"`
}

func newDedupCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dedup",
		Short: "Remove documents whose term set repeats an earlier document",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, _, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			removed := server.RemoveDuplicates(cmd.Context())
			if removed == nil {
				removed = []int{}
			}
			if err := writeJSON(cmd, dedupReport{Removed: removed, Remaining: server.DocumentIDs()}); err != nil {
				return err
			}
			return a.finish(cmd)
		},
	}
}
