package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/duydb2/cloud9/internal/history"
	"github.com/duydb2/cloud9/internal/model"
)

func historyKind(replace bool) string {
	if replace {
		return model.HistoryReplace
	}
	return model.HistorySearch
}

func newHistoryCmd(e *env) *cobra.Command {
	c := &cobra.Command{
		Use:   "history",
		Short: "Show or clear the find / replace history",
	}

	var (
		replace bool
		limit   int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent patterns, newest first",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			store, err := history.Open(e.cfg.History.DB, e.cfg.History.Limit)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(c.Context(), historyKind(replace), limit)
			if err != nil {
				return err
			}
			out := c.OutOrStdout()
			for _, h := range entries {
				fmt.Fprintf(out, "%-16s %s\n", humanize.Time(h.CreatedAt), h.Query)
			}
			return nil
		},
	}
	list.Flags().BoolVarP(&replace, "replace", "r", false, "List replacement texts")
	list.Flags().IntVarP(&limit, "limit", "n", 20, "Entries to show, 0 for all")

	var clearReplace, all bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete history entries",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			store, err := history.Open(e.cfg.History.DB, e.cfg.History.Limit)
			if err != nil {
				return err
			}
			defer store.Close()

			kind := historyKind(clearReplace)
			if all {
				kind = ""
			}
			n, err := store.Clear(c.Context(), kind)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Deleted %d entries\n", n)
			return nil
		},
	}
	clearCmd.Flags().BoolVarP(&clearReplace, "replace", "r", false, "Clear replacement texts instead of patterns")
	clearCmd.Flags().BoolVar(&all, "all", false, "Clear both lists")

	c.AddCommand(list, clearCmd)
	return c
}
