package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/csrdash/internal/cli/formatter"
	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/filter"
	"github.com/alexanderramin/csrdash/internal/rollup"
	"github.com/alexanderramin/csrdash/internal/undo"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// ── key map ──────────────────────────────────────────────────────────────────

type dashboardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Partner key.Binding
	Toll    key.Binding
	Clear   key.Binding
	Groups  key.Binding
	Delete  key.Binding
	Undo    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func newDashboardKeyMap() dashboardKeyMap {
	return dashboardKeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select project")),
		Partner: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "next partner")),
		Toll:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "next toll")),
		Clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		Groups:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "groups")),
		Delete:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete partner/toll")),
		Undo:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo delete")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Partner, k.Toll, k.Clear, k.Groups, k.Delete, k.Undo, k.Quit}
}

func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Partner, k.Toll, k.Clear, k.Groups},
		{k.Delete, k.Undo, k.Refresh, k.Quit},
	}
}

// ── messages ─────────────────────────────────────────────────────────────────

// stateChangedMsg signals that the filter store notified its subscribers.
type stateChangedMsg struct{}

// storeActionMsg reports the outcome of a store call made off the UI loop.
type storeActionMsg struct {
	err error
}

// detailLoadedMsg carries the card data for the project under the cursor.
type detailLoadedMsg struct {
	projectID string
	data      formatter.ProjectDetailData
	err       error
}

// deletionDoneMsg reports a scheduled deletion that committed or was undone.
type deletionDoneMsg struct {
	label string
	err   error
}

type tickMsg time.Time

// ── model ────────────────────────────────────────────────────────────────────

// dashboardModel is the interactive portfolio view: filter bar and totals on
// top, project list on the left, the project card on the right.
type dashboardModel struct {
	ctx     context.Context
	app     *App
	changes chan struct{}
	unsub   func()

	state      filter.State
	cursor     int
	showGroups bool

	detail        *formatter.ProjectDetailData
	detailErr     error
	detailLoading bool

	notice  string
	spinner spinner.Model
	help    help.Model
	keys    dashboardKeyMap
	width   int
	height  int
}

func newDashboardModel(ctx context.Context, app *App) *dashboardModel {
	m := &dashboardModel{
		ctx:     ctx,
		app:     app,
		changes: make(chan struct{}, 1),
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(formatter.StyleHeader)),
		help:    help.New(),
		keys:    newDashboardKeyMap(),
		width:   120,
	}
	m.unsub = app.Filters.Subscribe(func(filter.State) {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	})
	m.state = app.Filters.State()
	return m
}

// close unsubscribes from the store.
func (m *dashboardModel) close() {
	m.unsub()
}

func (m *dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), m.spinner.Tick, m.loadDetail(), tick())
}

func (m *dashboardModel) waitForChange() tea.Cmd {
	ch := m.changes
	return func() tea.Msg {
		<-ch
		return stateChangedMsg{}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// ── data loading ─────────────────────────────────────────────────────────────

func (m *dashboardModel) current() *domain.Project {
	if m.cursor < 0 || m.cursor >= len(m.state.FilteredProjects) {
		return nil
	}
	return m.state.FilteredProjects[m.cursor]
}

func (m *dashboardModel) loadDetail() tea.Cmd {
	p := m.current()
	if p == nil {
		m.detail = nil
		return nil
	}
	if m.detail != nil && m.detail.Project.ID == p.ID {
		return nil
	}
	m.detailLoading = true
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		data, err := loadProjectDetail(ctx, app, p)
		return detailLoadedMsg{projectID: p.ID, data: data, err: err}
	}
}

// syncState pulls the latest snapshot and keeps the cursor in range.
func (m *dashboardModel) syncState() tea.Cmd {
	m.state = m.app.Filters.State()
	if n := len(m.state.FilteredProjects); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	if p := m.current(); p == nil || (m.detail != nil && m.detail.Project.ID != p.ID) {
		m.detail = nil
	}
	return m.loadDetail()
}

func (m *dashboardModel) storeCall(fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return storeActionMsg{err: fn(ctx)}
	}
}

// ── update ───────────────────────────────────────────────────────────────────

func (m *dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case stateChangedMsg:
		return m, tea.Batch(m.syncState(), m.waitForChange())

	case storeActionMsg:
		if msg.err != nil {
			m.notice = m.describe(msg.err)
		}
		return m, m.syncState()

	case detailLoadedMsg:
		if p := m.current(); p == nil || p.ID != msg.projectID {
			return m, nil
		}
		m.detailLoading = false
		m.detailErr = msg.err
		if msg.err == nil {
			data := msg.data
			m.detail = &data
		}
		return m, nil

	case deletionDoneMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("Deleting %s failed: %v", msg.label, msg.err)
		}
		return m, m.syncState()

	case tickMsg:
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	store := m.app.Filters
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.detail = nil
		return m, m.loadDetail()

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.state.FilteredProjects)-1 {
			m.cursor++
		}
		m.detail = nil
		return m, m.loadDetail()

	case key.Matches(msg, m.keys.Select):
		p := m.current()
		if p == nil {
			return m, nil
		}
		if err := store.SelectProject(p.ID); err != nil {
			m.notice = m.describe(err)
		}
		return m, m.syncState()

	case key.Matches(msg, m.keys.Partner):
		next := nextID(partnerIDs(m.state.Partners), m.state.SelectedPartner)
		return m, m.storeCall(func(ctx context.Context) error { return store.SelectPartner(ctx, next) })

	case key.Matches(msg, m.keys.Toll):
		if m.state.SelectedPartner == "" {
			m.notice = "Select a partner first."
			return m, nil
		}
		next := nextID(tollIDs(m.state.Tolls), m.state.SelectedToll)
		if err := store.SelectToll(next); err != nil {
			m.notice = m.describe(err)
		}
		return m, m.syncState()

	case key.Matches(msg, m.keys.Clear):
		if m.state.FiltersLocked {
			m.notice = m.describe(filter.ErrFiltersLocked)
			return m, nil
		}
		store.ResetFilters()
		return m, m.syncState()

	case key.Matches(msg, m.keys.Groups):
		m.showGroups = !m.showGroups
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		return m, m.scheduleDelete()

	case key.Matches(msg, m.keys.Undo):
		pending := m.app.Undo.List()
		if len(pending) == 0 {
			m.notice = "Nothing to undo."
			return m, nil
		}
		last := pending[len(pending)-1]
		if m.app.Undo.Undo(last.Key) {
			m.notice = "Restored " + last.Label + "."
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.storeCall(func(ctx context.Context) error {
			store.RefreshData(ctx)
			return nil
		})
	}
	return m, nil
}

// scheduleDelete arms deletion of the selected toll, or the selected partner
// when no toll is selected.
func (m *dashboardModel) scheduleDelete() tea.Cmd {
	if m.state.FiltersLocked {
		m.notice = m.describe(filter.ErrFiltersLocked)
		return nil
	}

	var (
		target undo.Key
		label  string
		del    func(ctx context.Context) error
		patch  filter.Patch
	)
	switch {
	case m.state.Toll() != nil:
		t := m.state.Toll()
		target = undo.Key{EntityType: entityToll, EntityID: t.ID}
		label = "toll " + t.DisplayName()
		del = func(ctx context.Context) error { return m.app.Tolls.Delete(ctx, t.ID) }
		patch = filter.RemoveToll(t.ID)
	case m.state.Partner() != nil:
		p := m.state.Partner()
		target = undo.Key{EntityType: entityPartner, EntityID: p.ID}
		label = "partner " + p.DisplayName()
		del = func(ctx context.Context) error { return m.app.Partners.Delete(ctx, p.ID) }
		patch = filter.RemovePartner(p.ID)
	default:
		m.notice = "Select a partner or toll to delete."
		return nil
	}

	pending, scheduled := scheduleDeletion(m.app, target, label, del, patch)
	if !scheduled {
		m.notice = "Deletion of " + label + " is already pending."
		return nil
	}
	return func() tea.Msg {
		<-pending.Done()
		return deletionDoneMsg{label: label, err: pending.Err()}
	}
}

func (m *dashboardModel) describe(err error) string {
	if errors.Is(err, filter.ErrFiltersLocked) {
		return "Filters are pinned to this project."
	}
	return err.Error()
}

func partnerIDs(partners []*domain.CSRPartner) []string {
	ids := make([]string, 0, len(partners))
	for _, p := range partners {
		ids = append(ids, p.ID)
	}
	return ids
}

func tollIDs(tolls []*domain.Toll) []string {
	ids := make([]string, 0, len(tolls))
	for _, t := range tolls {
		ids = append(ids, t.ID)
	}
	return ids
}

// nextID cycles through "" (all) followed by ids.
func nextID(ids []string, current string) string {
	if current == "" {
		if len(ids) == 0 {
			return ""
		}
		return ids[0]
	}
	for i, id := range ids {
		if id == current && i+1 < len(ids) {
			return ids[i+1]
		}
	}
	return ""
}

// ── view ─────────────────────────────────────────────────────────────────────

func (m *dashboardModel) View() string {
	var b strings.Builder

	title := formatter.StyleHeader.Render("CSR DASHBOARD")
	who := formatter.Dim(fmt.Sprintf("%s (%s)", m.state.UserID, m.state.Role))
	b.WriteString(title + "  " + who)
	if m.state.Loading || m.detailLoading {
		b.WriteString("  " + m.spinner.View())
	}
	b.WriteString("\n" + formatFilterBar(m.state) + "\n")
	if m.state.Err != "" {
		b.WriteString(formatter.StyleRed.Render(m.state.Err) + "\n")
	}
	b.WriteString(m.renderTotals() + "\n\n")

	if m.showGroups {
		b.WriteString(formatter.FormatGroups(rollup.GroupByDisplayName(m.state.FilteredProjects)))
	} else {
		leftWidth := max(m.width*2/5, 36)
		left := lipgloss.NewStyle().Width(leftWidth).Render(m.renderList())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", m.renderDetail()))
	}
	b.WriteString("\n")

	for _, p := range m.app.Undo.List() {
		remaining := time.Until(p.Deadline).Round(time.Second)
		b.WriteString(formatter.StyleYellow.Render(fmt.Sprintf("Deleting %s in %s", p.Label, max(remaining, 0))) +
			formatter.Dim("  (u to undo)") + "\n")
	}
	if m.notice != "" {
		b.WriteString(formatter.StyleYellowBold.Render(m.notice) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *dashboardModel) renderTotals() string {
	pf := rollup.SummarizePortfolio(m.state.FilteredProjects)
	return fmt.Sprintf("%s %d   %s %s   %s %s   %s %s",
		formatter.Dim("PROJECTS"), pf.Projects,
		formatter.Dim("BUDGET"), formatter.FormatINR(pf.TotalBudget),
		formatter.Dim("UTILIZED"), formatter.RenderUtilization(pf.UtilizedBudget, pf.TotalBudget, 12),
		formatter.Dim("REACH"), formatter.FormatCount(float64(pf.DirectBeneficiaries)))
}

func (m *dashboardModel) renderList() string {
	projects := m.state.FilteredProjects
	if len(projects) == 0 {
		return formatter.Dim("No projects match the current filters.")
	}
	var b strings.Builder
	b.WriteString(formatter.Header(fmt.Sprintf("Projects (%d)", len(projects))) + "\n")
	for i, p := range projects {
		marker := "  "
		line := fmt.Sprintf("%-14s %s", p.DisplayID(), p.Name)
		if i == m.cursor {
			marker = formatter.StyleHeader.Render("▸ ")
			line = formatter.Bold(line)
		} else if p.IsCompleted() {
			line = formatter.Dim(line)
		}
		b.WriteString(marker + line + "  " + formatter.StatusPill(p.Status) + "\n")
	}
	return b.String()
}

func (m *dashboardModel) renderDetail() string {
	switch {
	case m.detailErr != nil:
		return formatter.StyleRed.Render("Could not load project: " + m.detailErr.Error())
	case m.detail != nil:
		return formatter.FormatProjectDetail(*m.detail)
	case m.detailLoading:
		return formatter.Dim("Loading project...")
	default:
		return ""
	}
}

// ── commands ─────────────────────────────────────────────────────────────────

// runDashboard runs the interactive dashboard, or prints a snapshot when
// stdin is not a terminal.
func runDashboard(cmd *cobra.Command, app *App) error {
	if !app.interactive() {
		st := app.Filters.State()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, formatFilterBar(st))
		fmt.Fprintln(out, formatter.FormatPortfolio(rollup.SummarizePortfolio(st.FilteredProjects)))
		fmt.Fprintln(out, formatter.FormatProjectList(st.FilteredProjects))
		return nil
	}

	m := newDashboardModel(cmd.Context(), app)
	defer m.close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()), tea.WithOutput(cmd.OutOrStdout()))
	_, err := p.Run()
	waitForPendingDeletions(cmd, app)
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive portfolio dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, app)
		},
	}
}
