package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/duydb2/cloud9/internal/cache"
	"github.com/duydb2/cloud9/internal/ops"
)

func newResultsCmd(e *env) *cobra.Command {
	c := &cobra.Command{
		Use:     "results",
		Aliases: []string{"archive"},
		Short:   "Browse and prune archived search results",
	}

	openArchive := func() (*cache.Archive, error) {
		return cache.NewArchive(e.cfg.Archive.Dir, e.cfg.Archive.MaxSizeMB, e.cfg.Archive.TTL)
	}

	var filter ops.PruneFilter
	addFilterFlags := func(c *cobra.Command) {
		c.Flags().StringVarP(&filter.Query, "query", "q", "", "Pattern contains (case insensitive)")
		c.Flags().StringVar(&filter.Scope, "scope", "", "Scope path prefix")
		c.Flags().StringVar(&filter.State, "state", "", "completed, cancelled or failed")
		c.Flags().DurationVar(&filter.OlderThan, "older-than", 0, "Stored at least this long ago")
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List archived results",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			archive, err := openArchive()
			if err != nil {
				return err
			}
			entries, err := archive.ListEntries()
			if err != nil {
				return err
			}
			out := c.OutOrStdout()
			var total int64
			for _, en := range ops.FilterEntries(entries, filter) {
				total += en.Size
				fmt.Fprintf(out, "%s  %-9s %5d matches  %8s  %-14s '%s' in %s\n",
					en.Key, en.State, en.Count, humanize.IBytes(uint64(en.Size)),
					humanize.Time(en.StoredAt), en.Query, en.Scope)
			}
			fmt.Fprintf(out, "Total: %s\n", humanize.IBytes(uint64(total)))
			return nil
		},
	}
	addFilterFlags(list)

	show := &cobra.Command{
		Use:   "show KEY",
		Short: "Print an archived results document",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			archive, err := openArchive()
			if err != nil {
				return err
			}
			doc, err := archive.Read(args[0])
			if errors.Is(err, cache.ErrNotFound) {
				return fmt.Errorf("no archived results with key %s", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprint(c.OutOrStdout(), doc)
			return nil
		},
	}

	var dryRun bool
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete archived results matching the filters, or evict expired ones",
		Long: `Without filters, prune evicts entries past archive.ttl and the least
recently opened entries beyond archive.max_size_mb. With filters it deletes
every matching entry.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			archive, err := openArchive()
			if err != nil {
				return err
			}
			out := c.OutOrStdout()

			if filter == (ops.PruneFilter{}) {
				if dryRun {
					return errors.New("--dry-run needs at least one filter")
				}
				n, err := archive.Evict()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Evicted %d entries\n", n)
				return nil
			}

			entries, err := archive.ListEntries()
			if err != nil {
				return err
			}
			matched := ops.FilterEntries(entries, filter)
			if dryRun {
				for _, en := range matched {
					fmt.Fprintf(out, "would delete %s '%s' in %s\n", en.Key, en.Query, en.Scope)
				}
				return nil
			}
			res, err := ops.Prune(c.Context(), archive, ops.Keys(matched), nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted %d, failed %d\n", res.Completed, res.Failed)
			if len(res.Errors) > 0 {
				return errors.Join(res.Errors...)
			}
			return nil
		},
	}
	addFilterFlags(prune)
	prune.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Only print what would be deleted")

	c.AddCommand(list, show, prune)
	return c
}
