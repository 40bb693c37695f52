package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/duydb2/cloud9/internal/model"
	"github.com/duydb2/cloud9/internal/query"
	"github.com/duydb2/cloud9/internal/search"
	"github.com/duydb2/cloud9/internal/stream"
)

var (
	colorPath   = color.New(color.FgMagenta)
	colorLineNo = color.New(color.FgGreen)
	colorMatch  = color.New(color.FgRed, color.Bold)
	colorHeader = color.New(color.Bold)
	colorFooter = color.New(color.FgGreen, color.Bold)
)

// searchFlags are shared by the search and replace commands.
type searchFlags struct {
	regex     bool
	matchCase bool
	word      bool
	include   string
	noHeader  bool
}

func (f *searchFlags) register(c *cobra.Command) {
	c.Flags().BoolVarP(&f.regex, "regexp", "e", false, "Treat the pattern as a regular expression")
	c.Flags().BoolVarP(&f.matchCase, "match-case", "c", false, "Case sensitive match")
	c.Flags().BoolVarP(&f.word, "word", "w", false, "Match whole words only")
	c.Flags().StringVarP(&f.include, "include", "i", "", "Comma separated file globs, e.g. \"*.go, *.js\"")
	c.Flags().BoolVar(&f.noHeader, "no-header", false, "Do not print the \"Searching for\" line")
}

// fields fills the form values from flags, falling back to the config
// defaults for flags that were not given.
func (f *searchFlags) fields(c *cobra.Command, e *env, pattern, scope string) query.Fields {
	defaults := e.cfg.Search
	flags := c.Flags()
	pick := func(name string, v, def bool) bool {
		if flags.Changed(name) {
			return v
		}
		return def
	}
	include := defaults.FilePatterns
	if flags.Changed("include") {
		include = f.include
	}

	fields := query.Fields{
		Pattern:       pattern,
		IsRegex:       pick("regexp", f.regex, defaults.Regex),
		CaseSensitive: pick("match-case", f.matchCase, defaults.MatchCase),
		WholeWord:     pick("word", f.word, defaults.WholeWord),
		FilePatterns:  include,
		ProjectPath:   e.cfg.Server.Project,
	}
	if scope != "" {
		fields.Scope = query.ScopeSelection
		fields.Selection = model.ResultLine{Path: scope}.ProjectPath(e.cfg.Server.Project)
	}
	return fields
}

func newSearchCmd(e *env) *cobra.Command {
	var f searchFlags
	c := &cobra.Command{
		Use:   "search PATTERN [PATH]",
		Short: "Find in files and stream the results",
		Long: `Find PATTERN in the project, or below PATH, and print the results as they
arrive. PATH is relative to the project root; a file searches its folder.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(c *cobra.Command, args []string) error {
			d, ok := query.Build(f.fields(c, e, args[0], argAt(args, 1)))
			if !ok {
				return nil
			}
			return runSearch(c.Context(), e, c.OutOrStdout(), d, !f.noHeader && e.cfg.Search.Header)
		},
	}
	f.register(c)
	return c
}

func newReplaceCmd(e *env) *cobra.Command {
	var (
		f   searchFlags
		yes bool
	)
	c := &cobra.Command{
		Use:   "replace PATTERN REPLACEMENT [PATH]",
		Short: "Replace in files and stream the rewritten lines",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(c *cobra.Command, args []string) error {
			fields := f.fields(c, e, args[0], argAt(args, 2))
			fields.ReplaceAll = true
			fields.Replacement = args[1]
			d, ok := query.Build(fields)
			if !ok {
				return nil
			}
			if !yes {
				return fmt.Errorf("replace rewrites every match in %s on the server; pass --yes to confirm", d.ScopePath)
			}
			return runSearch(c.Context(), e, c.OutOrStdout(), d, !f.noHeader && e.cfg.Search.Header)
		},
	}
	f.register(c)
	c.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the replacement")
	return c
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// runSearch submits d and prints the session output as it grows. An
// interrupt cancels the job on the server.
func runSearch(parent context.Context, e *env, out io.Writer, d model.QueryDescriptor, header bool) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	log := e.stderrLogger()
	client, err := e.client()
	if err != nil {
		return err
	}

	session := stream.NewSession(e.sessionOptions(header))
	task, err := stream.Begin(ctx, client, session, d)
	if err != nil {
		return err
	}
	log.Debug("submitted", "job", task.Handle, "pattern", d.Pattern, "scope", d.ScopePath)

	var mt *search.Matcher
	if !d.ReplaceAll {
		var cerr error
		if mt, cerr = search.Compile(d); cerr != nil {
			log.Debug("highlighting disabled", "pattern", d.Pattern, "err", cerr)
		}
	}
	printed := 0
	flush := func() {
		lines := session.LinesFrom(printed)
		printed += len(lines)
		for _, line := range lines {
			fmt.Fprintln(out, colorize(line, mt))
		}
	}
	flush()

	st, err := stream.Run(ctx, client, session, task, e.cfg.Poll.Interval, func(u stream.Update) {
		flush()
		switch {
		case errors.Is(u.Err, stream.ErrMalformedSummary):
			log.Warn("results summary", "err", u.Err)
		case u.Err != nil && u.Status.State == stream.StatePolling:
			log.Debug("poll failed", "failures", u.Status.Failures, "err", u.Err)
		}
	})
	flush()

	if st.State != stream.StateCompleted {
		cancelCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := client.Cancel(cancelCtx, task.Handle); cerr != nil {
			log.Warn("cancel job", "job", task.Handle, "err", cerr)
		}
	}
	switch {
	case errors.Is(err, context.Canceled):
		return errors.New("search cancelled")
	case err != nil:
		return err
	}
	return nil
}

// colorize renders one buffer line for a terminal.
func colorize(line string, mt *search.Matcher) string {
	if r, ok := model.ParseResultLine(line); ok {
		return colorPath.Sprint(r.Path) + ":" + colorLineNo.Sprint(strconv.Itoa(r.Line)) + ":" + highlight(r.Text, mt)
	}
	if stream.IsHeader(line) {
		return colorHeader.Sprint(line)
	}
	if stream.IsFooter(line) {
		return colorFooter.Sprint(line)
	}
	return line
}

func highlight(text string, mt *search.Matcher) string {
	if mt == nil {
		return text
	}
	runes := []rune(text)
	var b strings.Builder
	last := 0
	for _, rg := range mt.Ranges(text) {
		start, end := min(rg[0], len(runes)), min(rg[1], len(runes))
		if start < last {
			continue
		}
		b.WriteString(string(runes[last:start]))
		b.WriteString(colorMatch.Sprint(string(runes[start:end])))
		last = end
	}
	b.WriteString(string(runes[last:]))
	return b.String()
}
