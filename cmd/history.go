package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand(input *Input) *cobra.Command {
	var limit int
	var clearAll, asJSON bool
	var prune time.Duration
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show, prune or clear recorded evaluations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := input.OpenHistory()
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("history is disabled")
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			switch {
			case clearAll:
				n, err := store.Clear()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d entries from %s\n", n, store.Path())
				return nil
			case prune > 0:
				n, err := store.Prune(prune)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d entries older than %s from %s\n", n, prune, store.Path())
				return nil
			}

			entries, err := store.Recent(limit)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			for i := len(entries) - 1; i >= 0; i-- {
				e := entries[i]
				fmt.Fprintf(out, "%s  %-6s %s\n", time.Unix(0, e.CreatedAt).Format(time.DateTime), e.Source, formatEntry(e))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show; 0 shows all")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "remove every entry")
	cmd.Flags().DurationVar(&prune, "prune", 0, "remove entries older than this (e.g. 720h)")
	cmd.Flags().BoolVar(&asJSON, "output-json", false, "print entries as JSON")
	return cmd
}
