package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/duydb2/cloud9/internal/cache"
	"github.com/duydb2/cloud9/internal/history"
	"github.com/duydb2/cloud9/internal/model"
	"github.com/duydb2/cloud9/internal/ops"
	"github.com/duydb2/cloud9/internal/search"
	"github.com/duydb2/cloud9/internal/stream"
	"github.com/duydb2/cloud9/internal/tui/archiveview"
	"github.com/duydb2/cloud9/internal/tui/confirm"
	"github.com/duydb2/cloud9/internal/tui/fileview"
	"github.com/duydb2/cloud9/internal/tui/findform"
	"github.com/duydb2/cloud9/internal/tui/resultsview"
	"github.com/duydb2/cloud9/internal/ui"
)

type View int

const (
	ViewResults View = iota
	ViewArchive
)

const (
	requestTimeout = 30 * time.Second
	cancelTimeout  = 5 * time.Second
)

// Backend is the remote search service the panel talks to.
type Backend interface {
	stream.Submitter
	stream.Poller
	stream.Canceller
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

type Options struct {
	Backend  Backend
	History  *history.Store // optional
	Archive  *cache.Archive // optional
	Logger   *slog.Logger
	Server   string // shown in the header
	Project  string
	Interval time.Duration
	Session  stream.Options
	Defaults findform.Defaults
}

type App struct {
	opts    Options
	log     *slog.Logger
	session *stream.Session

	// Search state
	task       *stream.Task
	taskStart  int    // first buffer line written by task
	submitSeq  uint64 // bumped on every submit and on cancel
	submitting bool
	rendered   uint64 // session version shown in the results view
	archived   string // archive key when the results view shows an archived document

	// Views
	findForm      findform.Model
	results       resultsview.Model
	fileView      fileview.Model
	archiveView   archiveview.Model
	confirmDialog confirm.Model

	currentView    View
	fileFullScreen bool
	width          int
	height         int
	status         string
	showHelp       bool
}

func NewApp(opts Options) App {
	if opts.Interval <= 0 {
		opts.Interval = stream.DefaultInterval
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return App{
		opts:        opts,
		log:         log,
		session:     stream.NewSession(opts.Session),
		findForm:    findform.New(opts.Project, opts.Defaults),
		results:     resultsview.New(),
		fileView:    fileview.New(),
		archiveView: archiveview.New(),
		currentView: ViewResults,
		status:      "Press / to find in files",
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.loadHistory(model.HistorySearch),
		a.loadHistory(model.HistoryReplace),
		a.loadArchive(),
	)
}

// Session exposes the results session, mainly for tests.
func (a App) Session() *stream.Session { return a.session }

// --- Search commands ---

func (a App) submit(seq uint64, d model.QueryDescriptor) tea.Cmd {
	backend := a.opts.Backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		h, err := backend.Submit(ctx, d)
		return ui.SubmittedMsg{Seq: seq, Query: d, Handle: h, Err: err}
	}
}

func (a App) schedulePoll(t *stream.Task) tea.Cmd {
	return tea.Tick(a.opts.Interval, func(time.Time) tea.Msg {
		return ui.PollTickMsg{Task: t}
	})
}

func (a App) poll(t *stream.Task, offset int) tea.Cmd {
	backend := a.opts.Backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(t.Context(), requestTimeout)
		defer cancel()
		res, err := backend.Poll(ctx, t.Handle, offset)
		return ui.ChunkMsg{Task: t, Result: res, Err: err}
	}
}

func (a App) cancelRemote(h model.JobHandle) tea.Cmd {
	if h == "" {
		return nil
	}
	backend := a.opts.Backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cancelTimeout)
		defer cancel()
		return ui.RemoteCancelledMsg{Job: h, Err: backend.Cancel(ctx, h)}
	}
}

func (a App) openFile(r model.ResultLine) tea.Cmd {
	backend := a.opts.Backend
	p := r.ProjectPath(a.opts.Project)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		data, err := backend.ReadFile(ctx, p)
		return ui.FileLoadedMsg{Path: p, Line: r.Line, Content: string(data), Err: err}
	}
}

func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return ui.StatusMsg{Text: fmt.Sprintf("Error: copy to clipboard: %v", err)}
		}
		return ui.StatusMsg{Text: "Copied " + text}
	}
}

// --- History and archive commands ---

func (a App) loadHistory(kind string) tea.Cmd {
	store := a.opts.History
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		entries, err := store.List(context.Background(), kind, 0)
		return ui.HistoryLoadedMsg{Kind: kind, Entries: entries, Err: err}
	}
}

// recordHistory saves the pattern, and the replacement of a replace, then
// reloads the recall lists.
func (a App) recordHistory(d model.QueryDescriptor) tea.Cmd {
	store := a.opts.History
	if store == nil {
		return nil
	}
	add := func(kind, q string) tea.Cmd {
		return func() tea.Msg {
			ctx := context.Background()
			if err := store.Add(ctx, kind, q); err != nil {
				return ui.HistoryLoadedMsg{Kind: kind, Err: err}
			}
			entries, err := store.List(ctx, kind, 0)
			return ui.HistoryLoadedMsg{Kind: kind, Entries: entries, Err: err}
		}
	}
	if d.ReplaceAll {
		return tea.Sequence(add(model.HistorySearch, d.Pattern), add(model.HistoryReplace, d.Replacement))
	}
	return add(model.HistorySearch, d.Pattern)
}

func (a App) loadArchive() tea.Cmd {
	archive := a.opts.Archive
	if archive == nil {
		return nil
	}
	return func() tea.Msg {
		entries, err := archive.ListEntries()
		if err != nil {
			return ui.ArchiveLoadedMsg{Err: err}
		}
		var total int64
		for _, e := range entries {
			total += e.Size
		}
		return ui.ArchiveLoadedMsg{Entries: entries, TotalSize: total}
	}
}

func (a App) archiveResults(t *stream.Task, st stream.Status, doc string) tea.Cmd {
	archive := a.opts.Archive
	if archive == nil {
		return nil
	}
	return func() tea.Msg {
		meta := model.ArchiveMeta{
			Job:         t.Handle,
			Query:       t.Query.Pattern,
			Replacement: t.Query.Replacement,
			Scope:       t.Query.ScopePath,
			State:       st.State.String(),
			StartedAt:   t.Started(),
		}
		if st.Summary != nil {
			meta.Count = st.Summary.Count
			meta.FileCount = st.Summary.FileCount
		}
		key, err := archive.Store(t.Query, meta, doc)
		if err != nil {
			return ui.ArchivedMsg{Err: err}
		}
		evicted, err := archive.Evict()
		return ui.ArchivedMsg{Key: key, Evicted: evicted, Err: err}
	}
}

func (a App) openArchived(e model.ArchiveEntry) tea.Cmd {
	archive := a.opts.Archive
	return func() tea.Msg {
		doc, err := archive.Read(e.Key)
		return ui.ArchiveOpenedMsg{Entry: e, Doc: doc, Err: err}
	}
}

func (a App) deleteEntries(keys []string) tea.Cmd {
	archive := a.opts.Archive
	return func() tea.Msg {
		res, err := ops.Prune(context.Background(), archive, keys, nil)
		return ui.ArchiveDeletedMsg{Result: res, Err: err}
	}
}

func (a App) clearArchive() tea.Cmd {
	archive := a.opts.Archive
	return func() tea.Msg {
		if err := archive.DeleteAll(); err != nil {
			return ui.ArchiveDeletedMsg{Err: err}
		}
		return ui.ArchiveDeletedMsg{Result: &ops.PruneResult{}}
	}
}

func (a App) evictArchive() tea.Cmd {
	archive := a.opts.Archive
	return func() tea.Msg {
		n, err := archive.Evict()
		return ui.ArchivedMsg{Evicted: n, Err: err}
	}
}

// --- Search state transitions ---

// startSearch submits d. Any running search is stopped first.
func (a *App) startSearch(d model.QueryDescriptor) tea.Cmd {
	cmd := a.stopSearch()
	a.submitSeq++
	a.submitting = true
	a.status = fmt.Sprintf("Submitting '%s'...", d.Pattern)
	a.log.Debug("submit", "seq", a.submitSeq, "pattern", d.Pattern, "scope", d.ScopePath, "replace", d.ReplaceAll)
	return tea.Batch(cmd, a.submit(a.submitSeq, d))
}

// stopSearch cancels the active task and any submit still in flight.
func (a *App) stopSearch() tea.Cmd {
	if a.submitting {
		// The answer to the pending submit is now stale.
		a.submitSeq++
		a.submitting = false
	}
	t := a.session.Cancel()
	if t == nil {
		return nil
	}
	a.log.Debug("cancel", "task", t.ID, "job", t.Handle)
	a.syncResults()
	return a.cancelRemote(t.Handle)
}

func (a *App) handleSubmitted(msg ui.SubmittedMsg) tea.Cmd {
	if msg.Seq != a.submitSeq {
		// Superseded or cancelled: stop the orphaned job.
		if msg.Err == nil {
			return a.cancelRemote(msg.Handle)
		}
		return nil
	}
	a.submitting = false
	if msg.Err != nil {
		a.status = fmt.Sprintf("Error: %v", msg.Err)
		a.log.Warn("submit failed", "err", msg.Err)
		return nil
	}

	a.taskStart = a.session.Len()
	a.task = a.session.Start(context.Background(), msg.Handle, msg.Query)
	a.archived = ""
	a.results.SetTitle("")
	a.results.SetQuery(msg.Query)
	a.results.SetFollow(true)
	a.syncResults()
	a.currentView = ViewResults
	a.fileFullScreen = false
	a.status = fmt.Sprintf("Searching for '%s'...", msg.Query.Pattern)
	return a.schedulePoll(a.task)
}

func (a *App) handlePollTick(msg ui.PollTickMsg) tea.Cmd {
	if msg.Task != a.task {
		return nil
	}
	st, err := a.session.Expire(msg.Task)
	if err != nil {
		return a.finishTask(msg.Task, st)
	}
	if st.State != stream.StatePolling {
		return nil
	}
	return a.poll(msg.Task, st.Offset)
}

func (a *App) handleChunk(msg ui.ChunkMsg) tea.Cmd {
	var (
		st  stream.Status
		err error
	)
	if msg.Err != nil {
		st, err = a.session.DeliverError(msg.Task, msg.Err)
		if err == nil {
			a.log.Debug("poll failed", "task", msg.Task.ID, "failures", st.Failures, "err", msg.Err)
		}
	} else {
		st, err = a.session.Deliver(msg.Task, msg.Result)
	}

	if errors.Is(err, stream.ErrStale) {
		// Late delivery for a cancelled task, or a replayed range.
		if msg.Task == a.task && st.State == stream.StatePolling {
			return a.schedulePoll(msg.Task)
		}
		return nil
	}
	if errors.Is(err, stream.ErrMalformedSummary) {
		a.status = fmt.Sprintf("Warning: %v", err)
		a.log.Warn("malformed summary", "task", msg.Task.ID, "err", err)
	}
	a.syncResults()

	if st.State.Terminal() {
		return a.finishTask(msg.Task, st)
	}
	return a.schedulePoll(msg.Task)
}

// finishTask reports a task that just left the polling state.
func (a *App) finishTask(t *stream.Task, st stream.Status) tea.Cmd {
	a.syncResults()
	switch st.State {
	case stream.StateCompleted:
		if st.Summary != nil {
			a.status = stream.FormatSummary(st.Summary.Count, st.Summary.FileCount)
		} else if !strings.HasPrefix(a.status, "Warning") {
			a.status = "Search finished"
		}
		a.log.Info("search completed", "task", t.ID, "job", t.Handle, "bytes", st.Offset)
		doc := strings.Join(a.session.LinesFrom(a.taskStart), "\n")
		return tea.Batch(a.archiveResults(t, st, doc), a.recordHistory(t.Query))
	case stream.StateFailed:
		a.status = fmt.Sprintf("Error: %v", st.Err)
		a.log.Warn("search failed", "task", t.ID, "job", t.Handle, "err", st.Err)
		return a.cancelRemote(t.Handle)
	}
	return nil
}

// searching reports whether a submit is in flight or a task is polling.
func (a App) searching() bool {
	if a.submitting {
		return true
	}
	t := a.session.Active()
	return t != nil && a.session.Status(t).State == stream.StatePolling
}

// syncResults pushes new session output to the results view unless an
// archived document is on display.
func (a *App) syncResults() {
	if a.archived != "" {
		return
	}
	if v := a.session.Version(); v != a.rendered {
		a.rendered = v
		a.results.SetLines(a.session.Lines())
	}
}

// --- Update ---

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Confirm dialog result (arrives after the dialog closed itself)
	if result, ok := msg.(confirm.ResultMsg); ok {
		if result.Confirmed {
			switch result.Action {
			case confirm.ActionReplaceAll:
				cmds = append(cmds, a.startSearch(result.Data.(model.QueryDescriptor)))
			case confirm.ActionDeleteEntry, confirm.ActionDeleteEntries:
				keys := result.Data.([]string)
				a.status = fmt.Sprintf("Deleting %d archived results...", len(keys))
				a.archiveView.ClearSelection()
				cmds = append(cmds, a.deleteEntries(keys))
			case confirm.ActionClearArchive:
				a.status = "Clearing archive..."
				cmds = append(cmds, a.clearArchive())
			}
		}
		return &a, tea.Batch(cmds...)
	}

	if a.confirmDialog.IsActive() {
		var cmd tea.Cmd
		a.confirmDialog, cmd = a.confirmDialog.Update(msg)
		return &a, cmd
	}

	// Find form result
	if result, ok := msg.(findform.ResultMsg); ok {
		if result.Submitted {
			d := result.Query
			if d.ReplaceAll {
				with := d.Replacement
				a.confirmDialog = confirm.New(
					"Replace All",
					fmt.Sprintf("Replace every match of '%s' with '%s'?", d.Pattern, with),
					confirm.ActionReplaceAll, d,
					"in "+d.ScopePath, "Files are rewritten on the server. This cannot be undone.",
				)
			} else {
				cmds = append(cmds, a.startSearch(d))
			}
		}
		return &a, tea.Batch(cmds...)
	}

	if _, isKey := msg.(tea.KeyMsg); isKey && a.findForm.IsActive() {
		var cmd tea.Cmd
		a.findForm, cmd = a.findForm.Update(msg)
		return &a, cmd
	}

	// Keys go straight to the file view while typing an in-file search,
	// and to the archive list while filtering.
	if _, isKey := msg.(tea.KeyMsg); isKey && a.fileFullScreen && a.fileView.IsSearching() {
		var cmd tea.Cmd
		a.fileView, cmd = a.fileView.Update(msg)
		return &a, cmd
	}
	if _, isKey := msg.(tea.KeyMsg); isKey && a.currentView == ViewArchive && a.archiveView.IsFiltering() {
		var cmd tea.Cmd
		a.archiveView, cmd = a.archiveView.Update(msg)
		return &a, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.propagateSize()

	case tea.KeyMsg:
		if a.showHelp {
			a.showHelp = false
			return &a, nil
		}

		switch msg.String() {
		case "q", "ctrl+c":
			// Closing the panel stops the running search.
			if cmd := a.stopSearch(); cmd != nil {
				return &a, tea.Sequence(cmd, tea.Quit)
			}
			return &a, tea.Quit

		case "?":
			a.showHelp = true
			return &a, nil

		case "1":
			a.currentView = ViewResults
			a.fileFullScreen = false
			return &a, nil
		case "2":
			if a.currentView != ViewArchive {
				a.currentView = ViewArchive
				a.fileFullScreen = false
				a.status = "Loading archived results..."
				cmds = append(cmds, a.loadArchive())
			}
			return &a, tea.Batch(cmds...)

		case "/", "ctrl+f":
			if !a.fileFullScreen || msg.String() == "ctrl+f" {
				a.findForm.SetSize(a.width, a.height)
				return &a, a.findForm.Open(false)
			}
		case "ctrl+r":
			a.findForm.SetSize(a.width, a.height)
			return &a, a.findForm.Open(true)

		case "x":
			if a.currentView == ViewResults {
				if a.searching() {
					cmds = append(cmds, a.stopSearch())
					a.status = "Search stopped"
				}
				return &a, tea.Batch(cmds...)
			}
		}

		switch a.currentView {
		case ViewResults:
			cmds = append(cmds, a.updateResultsKeys(msg))
		case ViewArchive:
			cmds = append(cmds, a.updateArchiveKeys(msg))
		}
		return &a, tea.Batch(cmds...)

	case ui.SubmittedMsg:
		cmds = append(cmds, a.handleSubmitted(msg))
	case ui.PollTickMsg:
		cmds = append(cmds, a.handlePollTick(msg))
	case ui.ChunkMsg:
		cmds = append(cmds, a.handleChunk(msg))
	case ui.RemoteCancelledMsg:
		if msg.Err != nil {
			a.log.Warn("remote cancel failed", "job", msg.Job, "err", msg.Err)
		}

	case ui.FileLoadedMsg:
		if msg.Err != nil {
			a.fileView.SetError(msg.Path, msg.Err)
			a.status = fmt.Sprintf("Error: %v", msg.Err)
			break
		}
		var mt *search.Matcher
		if t := a.session.Active(); t != nil && a.archived == "" && !t.Query.ReplaceAll {
			mt, _ = search.Compile(t.Query)
		}
		a.fileView.SetContent(msg.Path, msg.Content, mt)
		a.fileView.GotoLine(msg.Line)
		a.status = fmt.Sprintf("%s:%d", msg.Path, msg.Line)

	case ui.HistoryLoadedMsg:
		if msg.Err != nil {
			a.log.Warn("history", "kind", msg.Kind, "err", msg.Err)
			break
		}
		a.findForm.SetHistory(msg.Kind, msg.Entries)

	case ui.ArchivedMsg:
		if msg.Err != nil {
			a.log.Warn("archive", "err", msg.Err)
			a.status = fmt.Sprintf("Error: archive results: %v", msg.Err)
			break
		}
		if msg.Key == "" {
			a.status = fmt.Sprintf("Evicted %d archived results", msg.Evicted)
		}
		a.log.Debug("archived", "key", msg.Key, "evicted", msg.Evicted)
		cmds = append(cmds, a.loadArchive())

	case ui.ArchiveLoadedMsg:
		if msg.Err != nil {
			a.log.Warn("list archive", "err", msg.Err)
		}
		if a.currentView == ViewArchive {
			if msg.Err != nil {
				a.status = fmt.Sprintf("Error: %v", msg.Err)
			} else {
				a.status = fmt.Sprintf("%d archived results", len(msg.Entries))
			}
		}
		var cmd tea.Cmd
		a.archiveView, cmd = a.archiveView.Update(msg)
		cmds = append(cmds, cmd)

	case ui.ArchiveOpenedMsg:
		if msg.Err != nil {
			a.status = fmt.Sprintf("Error: %v", msg.Err)
			break
		}
		a.archived = msg.Entry.Key
		a.results.SetTitle(fmt.Sprintf("Archived: '%s' in %s", msg.Entry.Query, msg.Entry.Scope))
		a.results.SetQuery(model.QueryDescriptor{Pattern: msg.Entry.Query, ScopePath: msg.Entry.Scope, ReplaceAll: msg.Entry.Replacement != ""})
		a.results.SetFollow(false)
		a.results.SetLines(strings.Split(msg.Doc, "\n"))
		a.currentView = ViewResults
		a.status = "Showing archived results (esc: back to live results)"

	case ui.ArchiveDeletedMsg:
		switch {
		case msg.Err != nil:
			a.status = fmt.Sprintf("Error: %v", msg.Err)
		case msg.Result != nil && msg.Result.Failed > 0:
			a.status = fmt.Sprintf("Deleted %d, failed %d: %v", msg.Result.Completed, msg.Result.Failed, msg.Result.Errors[0])
		case msg.Result != nil && msg.Result.Completed > 0:
			a.status = fmt.Sprintf("Deleted %d archived results", msg.Result.Completed)
		default:
			a.status = "Archive cleared"
		}
		cmds = append(cmds, a.loadArchive())

	case ui.StatusMsg:
		a.status = msg.Text
	}

	return &a, tea.Batch(cmds...)
}

func (a *App) updateResultsKeys(msg tea.KeyMsg) tea.Cmd {
	if a.fileFullScreen {
		switch msg.String() {
		case "esc", "backspace":
			a.fileFullScreen = false
			a.propagateSize()
			return nil
		}
		var cmd tea.Cmd
		a.fileView, cmd = a.fileView.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "enter":
		r, ok := a.results.SelectedLine()
		if !ok {
			return nil
		}
		a.fileView.SetLoading(r.ProjectPath(a.opts.Project))
		a.fileFullScreen = true
		a.propagateSize()
		return a.openFile(r)
	case "y":
		if r, ok := a.results.SelectedLine(); ok {
			return copyToClipboard(fmt.Sprintf("%s:%d", r.ProjectPath(a.opts.Project), r.Line))
		}
		return nil
	case "esc":
		if a.archived != "" {
			a.archived = ""
			a.results.SetTitle("")
			if t := a.session.Active(); t != nil {
				a.results.SetQuery(t.Query)
			}
			a.rendered = a.session.Version()
			a.results.SetLines(a.session.Lines())
			a.status = "Live results"
		}
		return nil
	}

	var cmd tea.Cmd
	a.results, cmd = a.results.Update(msg)
	return cmd
}

func (a *App) updateArchiveKeys(msg tea.KeyMsg) tea.Cmd {
	if a.opts.Archive == nil {
		return nil
	}
	switch msg.String() {
	case "enter":
		if e := a.archiveView.SelectedEntry(); e != nil {
			return a.openArchived(*e)
		}
		return nil
	case "r":
		a.status = "Refreshing archive..."
		return a.loadArchive()
	case "p":
		a.status = "Evicting expired results..."
		return a.evictArchive()
	case "d":
		if keys := a.archiveView.SelectedKeys(); len(keys) > 0 {
			a.confirmDialog = confirm.New(
				"Delete Archived Results",
				fmt.Sprintf("Delete %d selected archived results?", len(keys)),
				confirm.ActionDeleteEntries, keys,
			)
		} else if e := a.archiveView.SelectedEntry(); e != nil {
			a.confirmDialog = confirm.New(
				"Delete Archived Result",
				fmt.Sprintf("Delete the archived results of '%s'?", e.Query),
				confirm.ActionDeleteEntry, []string{e.Key},
			)
		}
		return nil
	case "X":
		a.confirmDialog = confirm.New(
			"Clear Archive",
			"Delete ALL archived results?",
			confirm.ActionClearArchive, nil,
		)
		return nil
	}

	var cmd tea.Cmd
	a.archiveView, cmd = a.archiveView.Update(msg)
	return cmd
}

func (a *App) propagateSize() {
	// header(1) + tabs(1) + status(1) of chrome, plus the pane border (2)
	contentH := max(a.height-5, 1)
	contentW := max(a.width-4, 1)
	size := tea.WindowSizeMsg{Width: contentW, Height: contentH}

	a.results, _ = a.results.Update(size)
	a.fileView, _ = a.fileView.Update(size)
	a.archiveView, _ = a.archiveView.Update(size)
	a.findForm.SetSize(a.width, a.height)
}

// --- View ---

func (a App) View() string {
	var state stream.State
	if t := a.session.Active(); t != nil {
		state = a.session.Status(t).State
	}
	if a.searching() {
		state = stream.StatePolling
	}
	header := RenderHeader(a.opts.Server, a.opts.Project, state, a.width)
	tabs := a.renderTabs()

	contentH := max(a.height-5, 1)
	style := ui.StylePaneFocused.Width(max(a.width-2, 1)).Height(contentH)

	var content string
	switch {
	case a.currentView == ViewArchive:
		content = style.Render(a.archiveView.View())
	case a.fileFullScreen:
		content = style.Render(a.fileView.View())
	default:
		content = style.Render(a.results.View())
	}

	switch {
	case a.showHelp:
		content = a.renderHelp()
	case a.confirmDialog.IsActive():
		content = a.confirmDialog.View()
	case a.findForm.IsActive():
		content = a.findForm.View()
	}

	statusBar := RenderStatusBar(a.status, a.contextHints(), a.width)

	if maxLines := a.height - 3; maxLines > 0 {
		if lines := strings.Split(content, "\n"); len(lines) > maxLines {
			content = strings.Join(lines[:maxLines], "\n")
		}
	}
	return header + "\n" + tabs + "\n" + content + "\n" + statusBar
}

func (a App) renderTabs() string {
	tabStyle := lipgloss.NewStyle().Padding(0, 2)
	active := tabStyle.Bold(true).Foreground(ui.ColorPrimary)
	inactive := tabStyle.Foreground(ui.ColorMuted)

	resultsTab := inactive.Render("[1] Results")
	archiveTab := inactive.Render("[2] Archive")
	switch a.currentView {
	case ViewResults:
		resultsTab = active.Render("[1] Results")
	case ViewArchive:
		archiveTab = active.Render("[2] Archive")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, resultsTab, archiveTab)
}

func (a App) contextHints() string {
	switch {
	case a.findForm.IsActive():
		return "enter:run  tab:next  alt+r/c/w:toggles  esc:close"
	case a.confirmDialog.IsActive():
		return "y:yes  n:no"
	case a.currentView == ViewArchive:
		if a.archiveView.IsFiltering() {
			return "enter:confirm  esc:cancel"
		}
		return "enter:open  space:select  d:delete  p:evict  X:clear  f:filter  s:sort  q:quit"
	case a.fileFullScreen:
		if a.fileView.IsSearching() {
			return "enter:confirm  esc:cancel"
		}
		return "/:search  n/N:match  j/k:scroll  g/G:top/bot  esc:back"
	}
	return "/:find  C-r:replace  enter:open  y:copy  n/N:next result  F:follow  x:stop  ?:help  q:quit"
}

func (a App) renderHelp() string {
	help := `
  Search Results                 Archive
  ──────────────                 ───────
  /, C-f   Find in files         enter   Open archived results
  C-r      Replace in files      space   Select entry
  enter    Open file at line     d       Delete selected
  y        Copy path:line        p       Evict expired / oversized
  n / N    Next / prev result    X       Clear archive
  F        Toggle follow         s       Sort
  x        Stop search           f       Filter
  esc      Back to live results  r       Refresh

  Find form
  ─────────
  tab      Next field            alt+r   Toggle regexp
  C-p/C-n  History recall        alt+c   Toggle match case
  enter    Run                   alt+w   Toggle whole word

  1 / 2    Switch tabs           q       Quit

  Press any key to close`

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorPrimary).
		Padding(1, 2).
		Render(help)
}
