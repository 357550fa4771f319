package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/csrdash/internal/cli/formatter"
	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/filter"
	"github.com/alexanderramin/csrdash/internal/repository"
	"github.com/alexanderramin/csrdash/internal/service"
	"github.com/alexanderramin/csrdash/internal/testutil"
	"github.com/alexanderramin/csrdash/internal/undo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T, opts ...undo.Option) *App {
	t.Helper()
	db := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(db)

	partnerRepo := repository.NewSQLitePartnerRepo(db)
	tollRepo := repository.NewSQLiteTollRepo(db)
	projectRepo := repository.NewSQLiteProjectRepo(db)

	partners := service.NewPartnerService(partnerRepo, uow)
	tolls := service.NewTollService(tollRepo, partnerRepo, uow)
	projects := service.NewProjectService(projectRepo, partnerRepo, tollRepo, uow)
	team := service.NewTeamService(repository.NewSQLiteTeamMemberRepo(db), projectRepo, uow)

	persist := filter.NewMemoryPersistence()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return &App{
		Partners:   partners,
		Tolls:      tolls,
		Projects:   projects,
		Team:       team,
		Budget:     service.NewBudgetService(repository.NewSQLiteBudgetCategoryRepo(db), projectRepo, uow),
		Activities: service.NewActivityService(repository.NewSQLiteActivityRepo(db), projectRepo, uow),
		Media:      service.NewMediaService(repository.NewSQLiteMediaRepo(db), projectRepo),
		Filters: filter.NewStore(service.FilterGateway{
			Partners: partners,
			Tolls:    tolls,
			Projects: projects,
			Team:     team,
		}, persist),
		Persist:  persist,
		Undo:     undo.NewScheduler(ctx, append([]undo.Option{undo.WithDelay(time.Millisecond)}, opts...)...),
		Identity: filter.Identity{UserID: "admin", Role: domain.RoleAdmin},
	}
}

type seeded struct {
	partner *domain.CSRPartner
	toll    *domain.Toll
	project *domain.Project
}

// seedPortfolio creates one partner with a toll and a project under it.
func seedPortfolio(t *testing.T, app *App) seeded {
	t.Helper()
	ctx := context.Background()

	partner := testutil.NewTestPartner("Tata Trusts")
	require.NoError(t, app.Partners.Create(ctx, partner))
	toll := testutil.NewTestToll(partner.ID, "Khed Shivapur")
	require.NoError(t, app.Tolls.Create(ctx, toll))
	project := testutil.NewTestProject(partner.ID, "Shiksha",
		testutil.WithProjectCode("SHN-2024-01"),
		testutil.WithToll(toll.ID),
		testutil.WithBudget(100000, 25000),
	)
	require.NoError(t, app.Projects.Create(ctx, project, 0))

	return seeded{partner: partner, toll: toll, project: project}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	return executeCmdContext(t, context.Background(), app, args...)
}

func executeCmdContext(t *testing.T, ctx context.Context, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return formatter.StripANSI(buf.String()), err
}

// --- Root ---

func TestRootCmd_RequiresUser(t *testing.T) {
	app := testApp(t)
	app.Identity = filter.Identity{}

	_, err := executeCmd(t, app, "filter")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no user configured")
}

func TestRootCmd_RoleFlag(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "--user", "ravi", "--role", "accountant", "filter")
	require.NoError(t, err)
	assert.Equal(t, "ravi", app.Identity.UserID)
	assert.Equal(t, domain.RoleAccountant, app.Identity.Role)

	_, err = executeCmd(t, app, "--role", "intern", "filter")
	assert.Error(t, err)
}

// --- Partners and tolls ---

func TestPartnerCmd_AddListUpdate(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "partner", "add", "--name", "Infosys Foundation", "--email", "csr@infosys.example")
	require.NoError(t, err)
	assert.Contains(t, out, "Created partner Infosys Foundation")

	out, err = executeCmd(t, app, "partner", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Infosys Foundation")

	_, err = executeCmd(t, app, "partner", "update", "infosys foundation", "--no-such-flag")
	assert.Error(t, err)

	out, err = executeCmd(t, app, "partner", "update", "Infosys Foundation", "--contact", "Sudha")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated partner")

	partners, err := app.Partners.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, partners, 1)
	assert.Equal(t, "Sudha", partners[0].ContactPerson)
}

func TestPartnerCmd_AddRequiresName(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "partner", "add", "--email", "x@example.com")
	assert.Error(t, err)
}

func TestPartnerCmd_Deactivate(t *testing.T) {
	app := testApp(t)
	s := seedPortfolio(t, app)

	_, err := executeCmd(t, app, "partner", "deactivate", s.partner.ID)
	require.NoError(t, err)

	out, err := executeCmd(t, app, "partner", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Tata Trusts")

	out, err = executeCmd(t, app, "partner", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Tata Trusts")
}

func TestTollCmd_AddAndList(t *testing.T) {
	app := testApp(t)
	s := seedPortfolio(t, app)

	out, err := executeCmd(t, app, "toll", "add", "--partner", "Tata Trusts", "--name", "Chalakudy", "--city", "Thrissur", "--allocation", "500000")
	require.NoError(t, err)
	assert.Contains(t, out, "Created toll")

	out, err = executeCmd(t, app, "toll", "list", "--partner", s.partner.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Khed Shivapur")
	assert.Contains(t, out, "Chalakudy")
}

func TestTollCmd_ListDefaultsToSelectedPartner(t *testing.T) {
	app := testApp(t)
	seedPortfolio(t, app)

	_, err := executeCmd(t, app, "toll", "list")
	require.Error(t, err, "no partner selected")

	_, err = executeCmd(t, app, "filter", "partner", "Tata Trusts")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "toll", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Khed Shivapur")
}

// --- Projects ---

func TestProjectCmd_AddWithBeneficiaries(t *testing.T) {
	app := testApp(t)
	s := seedPortfolio(t, app)

	out, err := executeCmd(t, app, "project", "add",
		"--partner", s.partner.ID,
		"--code", "hlth-2024-02",
		"--name", "Arogya",
		"--budget", "250000",
		"--beneficiaries", "3",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Created project Arogya [HLTH-2024-02]")
	assert.Contains(t, out, "with 3 beneficiary sub-projects")

	p, err := app.Projects.Resolve(context.Background(), "HLTH-2024-02")
	require.NoError(t, err)
	subs, err := app.Projects.ListSubProjects(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 3)

	// Sub-projects never appear in the top-level list.
	assert.Len(t, app.Filters.State().Projects, 2)
}

func TestProjectCmd_AddInheritsSelectedToll(t *testing.T) {
	app := testApp(t)
	s := seedPortfolio(t, app)

	_, err := executeCmd(t, app, "filter", "partner", s.partner.ID)
	require.NoError(t, err)
	_, err = executeCmd(t, app, "filter", "toll", "Khed Shivapur")
	require.NoError(t, err)

	_, err = executeCmd(t, app, "project", "add", "--code", "WASH-01", "--name", "Jal")
	require.NoError(t, err)

	p, err := app.Projects.Resolve(context.Background(), "WASH-01")
	require.NoError(t, err)
	assert.Equal(t, s.partner.ID, p.CSRPartnerID)
	assert.Equal(t, s.toll.ID, domain.StrVal(p.TollID))
}

func TestProjectCmd_AddRejectsBadCode(t *testing.T) {
	app := testApp(t)
	s := seedPortfolio(t, app)

	_, err := executeCmd(t, app, "project", "add", "--partner", s.partner.ID, "--code", "x", "--name", "Tiny")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project code")
}

func TestProjectCmd_ShowAndUpdate(t *testing.T) {
	app := testApp(t)
	seedPortfolio(t, app)

	out, err := executeCmd(t, app, "project", "show", "shn-2024-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Shiksha")
	assert.Contains(t, out, "Tata Trusts")

	_, err = executeCmd(t, app, "project", "update", "SHN-2024-01", "--status", "completed", "--utilized", "90000")
	require.NoError(t, err)

	p, err := app.Projects.Resolve(context.Background(), "SHN-2024-01")
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectCompleted, p.Status)
	assert.InDelta(t, 90000, p.UtilizedBudget, 0.001)
}

func TestProjectCmd_ShowUsesSelectedProject(t *testing.T) {
	app := testApp(t)
	seedPortfolio(t, app)

	_, err := executeCmd(t, app, "project", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project is required")

	_, err = executeCmd(t, app, "filter", "project", "SHN-2024-01")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "project", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "SHN-2024-01")
}

func TestProjectCmd_Remove(t *testing.T) {
	app := testApp(t)
	seedPortfolio(t, app)

	out, err := executeCmd(t, app, "project", "remove", "SHN-2024-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted project SHN-2024-01")

	_, err = executeCmd(t, app, "project", "show", "SHN-2024-01")
	assert.Error(t, err)
	assert.Empty(t, app.Filters.State().Projects)
}

func TestProjectCmd_ListShowsFilterBar(t *testing.T) {
	app := testApp(t)
	seedPortfolio(t, app)

	out, err := executeCmd(t, app, "project", "list", "--portfolio")
	require.NoError(t, err)
	assert.Contains(t, out, "1 of 1 projects")
	assert.Contains(t, out, "SHN-2024-01")
	assert.Contains(t, out, "BUDGET")
}

func TestBeneficiariesCmd_AddContinuesNumbering(t *testing.T) {
	app := testApp(t)
	s := seedPortfolio(t, app)
	_, err := app.Projects.AddBeneficiaries(context.Background(), s.project.ID, 2)
	require.NoError(t, err)

	out, err := executeCmd(t, app, "project", "beneficiaries", "add", "SHN-2024-01", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "SHN-2024-01-B003")
	assert.Contains(t, out, "SHN-2024-01-B004")

	_, err = executeCmd(t, app, "project", "beneficiaries", "add", "SHN-2024-01", "zero")
	assert.Error(t, err)
}

func TestImpactCmd_SetAndSummary(t *testing.T) {
	app := testApp(t)
	seedPortfolio(t, app)

	_, err := executeCmd(t, app, "project", "impact", "set", "SHN-2024-01", "trees_planted", "1200")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "project", "impact", "set", "SHN-2024-01", "custom", "40", "--label", "Solar lamps")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "project", "impact", "summary", "SHN-2024-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Solar lamps")

	_, err = executeCmd(t, app, "project", "impact", "set", "SHN-2024-01", "trees_planted", "lots")
	assert.Error(t, err)
}

// --- Filters ---

func TestFilterCmd_Cascade(t *testing.T) {
	app := testApp(t)
	s := seedPortfolio(t, app)
	ctx := context.Background()

	other := testutil.NewTestPartner("Wipro Cares")
	require.NoError(t, app.Partners.Create(ctx, other))
	require.NoError(t, app.Projects.Create(ctx, testutil.NewTestProject(other.ID, "Vidya", testutil.WithProjectCode("EDU-01")), 0))

	out, err := executeCmd(t, app, "filter", "partner", "Tata Trusts")
	require.NoError(t, err)
	assert.Contains(t, out, "1 of 2 projects")

	_, err = executeCmd(t, app, "filter", "toll", s.toll.ID)
	require.NoError(t, err)
	_, err = executeCmd(t, app, "filter", "project", "SHN-2024-01")
	require.NoError(t, err)

	// Switching partner drops the toll and project.
	out, err = executeCmd(t, app, "filter", "partner", "Wipro Cares")
	require.NoError(t, err)
	st := app.Filters.State()
	assert.Equal(t, other.ID, st.SelectedPartner)
	assert.Empty(t, st.SelectedToll)
	assert.Empty(t, st.SelectedProject)
	assert.Contains(t, out, "1 of 2 projects")

	out, err = executeCmd(t, app, "filter", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "2 of 2 projects")
}

func TestFilterCmd_TollNeedsPartner(t *testing.T) {
	app := testApp(t)
	seedPortfolio(t, app)

	_, err := executeCmd(t, app, "filter", "toll", "Khed Shivapur")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select a partner first")
}

func TestFilterCmd_PickNeedsTerminal(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "filter", "pick")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestGroupCmd(t *testing.T) {
	app := testApp(t)
	s := seedPortfolio(t, app)
	require.NoError(t, app.Projects.Create(context.Background(),
		testutil.NewTestProject(s.partner.ID, "Shiksha ", testutil.WithProjectCode("SHN-2024-02"), testutil.WithBudget(50000, 0)), 0))

	out, err := executeCmd(t, app, "group")
	require.NoError(t, err)
	assert.Contains(t, out, "2 projects")
	assert.Contains(t, out, "SHN-2024-01")
	assert.Contains(t, out, "SHN-2024-02")
}

// --- Budget ---

func writeBudgetFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "budget.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestBudgetCmd_SaveAndReport(t *testing.T) {
	app := testApp(t)
	seedPortfolio(t, app)

	path := writeBudgetFile(t, `
- name: Admin
  allocated: 40000
  children:
    - name: Travel
      allocated: 15000
- name: Programme
  allocated: 50000
`)
	out, err := executeCmd(t, app, "budget", "save", "SHN-2024-01", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Admin")
	assert.Contains(t, out, "Travel")

	out, err = executeCmd(t, app, "budget", "report", "SHN-2024-01", "Travel", "--utilized", "10000", "--pending", "2000")
	require.NoError(t, err)
	assert.Contains(t, out, "Travel: utilized")

	out, err = executeCmd(t, app, "budget", "remove", "SHN-2024-01", "Programme")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted budget category Programme")
}

func TestBudgetCmd_SaveRejectsOverAllocation(t *testing.T) {
	app := testApp(t)
	s := seedPortfolio(t, app)

	path := writeBudgetFile(t, `
- name: Admin
  allocated: 80000
- name: Programme
  allocated: 50000
`)
	_, err := executeCmd(t, app, "budget", "save", "SHN-2024-01", "-f", path)
	require.Error(t, err)

	cats, err := app.Budget.List(context.Background(), s.project.ID)
	require.NoError(t, err)
	assert.Empty(t, cats, "nothing written when validation fails")
}

// --- Team ---

func TestTeamCmd_SetAndRole(t *testing.T) {
	app := testApp(t)
	seedPortfolio(t, app)

	out, err := executeCmd(t, app, "team", "set", "SHN-2024-01", "asha:project_manager", "ravi:accountant", "meena")
	require.NoError(t, err)
	assert.Contains(t, out, "asha")
	assert.Contains(t, out, "meena")

	out, err = executeCmd(t, app, "team", "role", "SHN-2024-01", "meena")
	require.NoError(t, err)
	assert.Contains(t, out, "meena is team_member on SHN-2024-01")

	out, err = executeCmd(t, app, "team", "role", "SHN-2024-01", "kiran")
	require.NoError(t, err)
	assert.Contains(t, out, "kiran is not assigned to SHN-2024-01")

	_, err = executeCmd(t, app, "team", "set", "SHN-2024-01", "asha:boss")
	assert.Error(t, err)
}

func TestTeamCmd_MineRestrictsTeamMember(t *testing.T) {
	app := testApp(t)
	s := seedPortfolio(t, app)
	require.NoError(t, app.Projects.Create(context.Background(),
		testutil.NewTestProject(s.partner.ID, "Arogya", testutil.WithProjectCode("HLTH-01")), 0))

	_, err := executeCmd(t, app, "team", "set", "SHN-2024-01", "meena")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "--user", "meena", "--role", "team_member", "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "SHN-2024-01")
	assert.NotContains(t, out, "HLTH-01")
}

// --- Activities and media ---

func TestActivityCmd_Checklist(t *testing.T) {
	app := testApp(t)
	seedPortfolio(t, app)

	_, err := executeCmd(t, app, "filter", "project", "SHN-2024-01")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "activity", "add", "--title", "Site survey", "--item", "Book vehicle", "--priority", "high")
	require.NoError(t, err)
	assert.Contains(t, out, `Added activity "Site survey" to SHN-2024-01`)

	activities, err := app.Activities.ListByProject(context.Background(), app.Filters.State().SelectedProject)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	a := activities[0]
	require.Len(t, a.Items, 1)

	out, err = executeCmd(t, app, "activity", "item", "add", a.ID[:8], "Print forms")
	require.NoError(t, err)
	assert.Contains(t, out, `Added "Print forms"`)

	out, err = executeCmd(t, app, "activity", "item", "toggle", a.Items[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "☑ Book vehicle")

	out, err = executeCmd(t, app, "activity", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Site survey")
	assert.Contains(t, out, "Print forms")

	out, err = executeCmd(t, app, "activity", "remove", a.ID)
	require.NoError(t, err)
	assert.Contains(t, out, `Deleted activity "Site survey"`)
}

func TestMediaCmd_AddListRemove(t *testing.T) {
	app := testApp(t)
	s := seedPortfolio(t, app)

	out, err := executeCmd(t, app, "media", "add", "SHN-2024-01", "--title", "School opens", "--url", "https://news.example/school")
	require.NoError(t, err)
	assert.Contains(t, out, `Linked news "School opens" to SHN-2024-01`)

	_, err = executeCmd(t, app, "media", "add", "SHN-2024-01", "--title", "Bad", "--url", "https://x.example", "--type", "hologram")
	assert.Error(t, err)

	out, err = executeCmd(t, app, "media", "list", "SHN-2024-01")
	require.NoError(t, err)
	assert.Contains(t, out, "School opens")

	media, err := app.Media.ListByProject(context.Background(), s.project.ID)
	require.NoError(t, err)
	require.Len(t, media, 1)

	_, err = executeCmd(t, app, "media", "remove", "SHN-2024-01", media[0].ID[:8])
	require.NoError(t, err)
	media, err = app.Media.ListByProject(context.Background(), s.project.ID)
	require.NoError(t, err)
	assert.Empty(t, media)
}

// --- Open ---

func TestOpenCmd_PinsThenUnlocks(t *testing.T) {
	app := testApp(t)
	s := seedPortfolio(t, app)

	out, err := executeCmd(t, app, "open", "SHN-2024-01")
	require.NoError(t, err)
	assert.Contains(t, out, "PINNED")
	assert.Contains(t, out, "YOUR ROLE project_manager")

	st := app.Filters.State()
	assert.False(t, st.FiltersLocked, "filters unlock when the view closes")
	assert.Equal(t, s.project.ID, st.SelectedProject)
	assert.Equal(t, s.partner.ID, st.SelectedPartner)

	pc, err := filter.LoadProjectContext(app.Persist)
	require.NoError(t, err)
	assert.Equal(t, s.project.ID, pc.ProjectID)
	assert.Equal(t, s.toll.ID, pc.TollID)
	assert.Equal(t, domain.TeamProjectManager, pc.ProjectRole)
}

func TestOpenCmd_SubProjectOpensParent(t *testing.T) {
	app := testApp(t)
	s := seedPortfolio(t, app)
	_, err := app.Projects.AddBeneficiaries(context.Background(), s.project.ID, 1)
	require.NoError(t, err)

	_, err = executeCmd(t, app, "open", "SHN-2024-01-B001")
	require.NoError(t, err)

	pc, err := filter.LoadProjectContext(app.Persist)
	require.NoError(t, err)
	assert.Equal(t, s.project.ID, pc.ProjectID)
}

func TestOpenCmd_DeniesUnassignedTeamMember(t *testing.T) {
	app := testApp(t)
	seedPortfolio(t, app)
	_, err := executeCmd(t, app, "team", "set", "SHN-2024-01", "meena:accountant")
	require.NoError(t, err)

	_, err = executeCmd(t, app, "--user", "kiran", "--role", "team_member", "open", "SHN-2024-01")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrNotAssigned)

	out, err := executeCmd(t, app, "--user", "meena", "--role", "team_member", "open", "SHN-2024-01")
	require.NoError(t, err)
	assert.Contains(t, out, "YOUR ROLE accountant")
}

// --- Undoable deletion ---

func TestPartnerCmd_RemoveCommitsAfterDelay(t *testing.T) {
	app := testApp(t)
	s := seedPortfolio(t, app)

	out, err := executeCmd(t, app, "partner", "remove", "Tata Trusts")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted partner Tata Trusts")

	_, err = app.Partners.GetByID(context.Background(), s.partner.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = app.Projects.GetByID(context.Background(), s.project.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	st := app.Filters.State()
	assert.Empty(t, st.Partners)
	assert.Empty(t, st.Projects)
}

func TestTollCmd_RemoveUndoneOnInterrupt(t *testing.T) {
	app := testApp(t, undo.WithDelay(time.Hour))
	s := seedPortfolio(t, app)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	out, err := executeCmdContext(t, ctx, app, "toll", "remove", s.toll.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Press Ctrl-C to undo")
	assert.Contains(t, out, "Undone: toll")

	_, err = app.Tolls.GetByID(context.Background(), s.toll.ID)
	require.NoError(t, err)
	assert.Zero(t, app.Undo.PendingCount())
}
