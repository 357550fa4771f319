package filter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/alexanderramin/csrdash/internal/domain"
)

// ErrFiltersLocked is returned by selection setters while filters are pinned.
var ErrFiltersLocked = errors.New("filters are locked to a pinned project")

// Gateway is the read side of the entity store the filter context needs.
type Gateway interface {
	ListActivePartners(ctx context.Context) ([]*domain.CSRPartner, error)
	ListTopLevelProjects(ctx context.Context) ([]*domain.Project, error)
	ListTollsByPartner(ctx context.Context, partnerID string) ([]*domain.Toll, error)
	AssignedProjectIDs(ctx context.Context, userID string) ([]string, error)
}

// Identity is the current user as resolved by the session provider.
type Identity struct {
	UserID string
	Role   domain.UserRole
}

// State is a snapshot of the filter context. Empty IDs mean "not selected".
type State struct {
	UserID string
	Role   domain.UserRole

	SelectedPartner string
	SelectedToll    string
	SelectedProject string
	FiltersLocked   bool

	Partners         []*domain.CSRPartner
	Projects         []*domain.Project // top-level, role-restricted
	Tolls            []*domain.Toll    // for SelectedPartner
	FilteredProjects []*domain.Project

	Loading bool
	Err     string
}

// Selection returns the current partner/toll/project selection.
func (s State) Selection() Selection {
	return Selection{PartnerID: s.SelectedPartner, TollID: s.SelectedToll, ProjectID: s.SelectedProject}
}

// Partner returns the selected partner from the loaded list, or nil.
func (s State) Partner() *domain.CSRPartner {
	for _, p := range s.Partners {
		if p.ID == s.SelectedPartner {
			return p
		}
	}
	return nil
}

// Toll returns the selected toll from the loaded list, or nil.
func (s State) Toll() *domain.Toll {
	for _, t := range s.Tolls {
		if t.ID == s.SelectedToll {
			return t
		}
	}
	return nil
}

// Project returns the selected project from the loaded list, or nil.
func (s State) Project() *domain.Project {
	for _, p := range s.Projects {
		if p.ID == s.SelectedProject {
			return p
		}
	}
	return nil
}

// Store is the single source of truth for what the user is looking at. It
// is safe for concurrent use; subscribers run outside the lock.
type Store struct {
	gw      Gateway
	persist Persistence
	logger  *slog.Logger

	mu      sync.Mutex
	st      State
	dataGen uint64
	tollGen uint64
	subs    map[int]func(State)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger routes load failures and persistence errors to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a Store. Call Init before reading state.
func NewStore(gw Gateway, persist Persistence, opts ...Option) *Store {
	s := &Store{
		gw:      gw,
		persist: persist,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		subs:    make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init records the identity, restores persisted selections and loads data.
// Admins always start without a partner so they land on the unfiltered view.
func (s *Store) Init(ctx context.Context, id Identity) {
	s.mu.Lock()
	s.st.UserID = id.UserID
	s.st.Role = id.Role
	if id.Role != domain.RoleAdmin {
		s.st.SelectedPartner = s.restore(KeyPartner)
	}
	s.st.SelectedProject = s.restore(KeyProject)
	s.recompute()
	s.mu.Unlock()
	s.notify()

	s.RefreshData(ctx)
}

// State returns a snapshot. Slices are copies; the projects they point to
// are shared and must be treated as read-only.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Subscribe registers fn to receive a snapshot after every change and
// returns a function that removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// SelectPartner switches the partner. A different partner clears the toll
// and project and reloads tolls; an empty id clears the partner.
func (s *Store) SelectPartner(ctx context.Context, partnerID string) error {
	s.mu.Lock()
	if s.st.FiltersLocked {
		s.mu.Unlock()
		return ErrFiltersLocked
	}
	changed := s.setPartner(partnerID)
	s.mu.Unlock()

	if !changed {
		return nil
	}
	s.notify()
	if partnerID != "" {
		s.loadTolls(ctx, partnerID)
	}
	return nil
}

// SelectToll switches the toll. A different toll clears the project.
func (s *Store) SelectToll(tollID string) error {
	s.mu.Lock()
	if s.st.FiltersLocked {
		s.mu.Unlock()
		return ErrFiltersLocked
	}
	changed := s.setToll(tollID)
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return nil
}

// SelectProject switches the project without touching partner or toll.
func (s *Store) SelectProject(projectID string) error {
	s.mu.Lock()
	if s.st.FiltersLocked {
		s.mu.Unlock()
		return ErrFiltersLocked
	}
	changed := s.setProject(projectID)
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return nil
}

// ResetFilters clears all selections. It is a no-op while locked.
func (s *Store) ResetFilters() {
	s.mu.Lock()
	if s.st.FiltersLocked {
		s.mu.Unlock()
		return
	}
	s.st.SelectedPartner = ""
	s.st.SelectedToll = ""
	s.st.SelectedProject = ""
	s.st.Tolls = nil
	s.tollGen++
	s.save(KeyPartner, "")
	s.save(KeyProject, "")
	s.recompute()
	s.mu.Unlock()
	s.notify()
}

// LockFilters freezes the current selection.
func (s *Store) LockFilters() {
	s.setLocked(true)
}

// UnlockFilters makes the selection editable again.
func (s *Store) UnlockFilters() {
	s.setLocked(false)
}

func (s *Store) setLocked(locked bool) {
	s.mu.Lock()
	if s.st.FiltersLocked == locked {
		s.mu.Unlock()
		return
	}
	s.st.FiltersLocked = locked
	s.mu.Unlock()
	s.notify()
}

// RefreshData reloads partners and the role-restricted project list, then
// the selected partner's tolls. Failures are recorded in State.Err and the
// last successfully loaded collections are kept.
func (s *Store) RefreshData(ctx context.Context) {
	s.mu.Lock()
	s.dataGen++
	gen := s.dataGen
	id := Identity{UserID: s.st.UserID, Role: s.st.Role}
	s.st.Loading = true
	s.mu.Unlock()
	s.notify()

	partners, partnerErr := s.gw.ListActivePartners(ctx)
	projects, projectErr := s.loadVisibleProjects(ctx, id)

	s.mu.Lock()
	if gen != s.dataGen {
		// A newer refresh owns the state.
		s.mu.Unlock()
		return
	}
	var msgs []string
	if partnerErr != nil {
		msgs = append(msgs, fmt.Sprintf("loading partners: %v", partnerErr))
		s.logger.ErrorContext(ctx, "filter_load_failed", "collection", "partners", "error", partnerErr)
	} else {
		s.st.Partners = partners
	}
	if projectErr != nil {
		msgs = append(msgs, fmt.Sprintf("loading projects: %v", projectErr))
		s.logger.ErrorContext(ctx, "filter_load_failed", "collection", "projects", "error", projectErr)
	} else {
		s.st.Projects = projects
	}
	s.st.Err = strings.Join(msgs, "; ")
	s.st.Loading = false
	s.recompute()
	partnerID := s.st.SelectedPartner
	s.mu.Unlock()
	s.notify()

	if partnerID != "" {
		s.loadTolls(ctx, partnerID)
	}
}

func (s *Store) loadVisibleProjects(ctx context.Context, id Identity) ([]*domain.Project, error) {
	projects, err := s.gw.ListTopLevelProjects(ctx)
	if err != nil {
		return nil, err
	}
	if id.Role.SeesAllProjects() {
		return projects, nil
	}
	assigned, err := s.gw.AssignedProjectIDs(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolving assignments: %w", err)
	}
	return VisibleTo(projects, id.Role, assigned), nil
}

// loadTolls fetches tolls for partnerID and applies them only if that
// partner is still selected and no newer toll load has started.
func (s *Store) loadTolls(ctx context.Context, partnerID string) {
	s.mu.Lock()
	s.tollGen++
	gen := s.tollGen
	s.mu.Unlock()

	tolls, err := s.gw.ListTollsByPartner(ctx, partnerID)

	s.mu.Lock()
	if gen != s.tollGen || s.st.SelectedPartner != partnerID {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "filter_stale_load_discarded", "collection", "tolls", "partner_id", partnerID)
		return
	}
	if err != nil {
		s.st.Err = fmt.Sprintf("loading tolls: %v", err)
		s.logger.ErrorContext(ctx, "filter_load_failed", "collection", "tolls", "partner_id", partnerID, "error", err)
	} else {
		s.st.Tolls = tolls
	}
	s.recompute()
	s.mu.Unlock()
	s.notify()
}

// setPartner must be called with mu held. It reports whether state changed.
func (s *Store) setPartner(partnerID string) bool {
	if s.st.SelectedPartner == partnerID {
		return false
	}
	s.st.SelectedPartner = partnerID
	s.st.SelectedToll = ""
	s.st.SelectedProject = ""
	s.st.Tolls = nil
	s.tollGen++ // invalidate in-flight toll loads for the old partner
	s.save(KeyPartner, partnerID)
	s.save(KeyProject, "")
	s.recompute()
	return true
}

func (s *Store) setToll(tollID string) bool {
	if s.st.SelectedToll == tollID {
		return false
	}
	s.st.SelectedToll = tollID
	if s.st.SelectedProject != "" {
		s.st.SelectedProject = ""
		s.save(KeyProject, "")
	}
	s.recompute()
	return true
}

func (s *Store) setProject(projectID string) bool {
	if s.st.SelectedProject == projectID {
		return false
	}
	s.st.SelectedProject = projectID
	s.save(KeyProject, projectID)
	s.recompute()
	return true
}

func (s *Store) recompute() {
	s.st.FilteredProjects = Derive(s.st.Projects, s.st.Selection())
}

func (s *Store) restore(key string) string {
	v, err := s.persist.Get(key)
	if err != nil {
		s.logger.Warn("filter_restore_failed", "key", key, "error", err)
		return ""
	}
	return v
}

// save writes value under key, removing the key for an empty value.
func (s *Store) save(key, value string) {
	var err error
	if value == "" {
		err = s.persist.Remove(key)
	} else {
		err = s.persist.Set(key, value)
	}
	if err != nil {
		s.logger.Warn("filter_persist_failed", "key", key, "error", err)
	}
}

func (s *Store) snapshot() State {
	st := s.st
	st.Partners = slices.Clone(s.st.Partners)
	st.Projects = slices.Clone(s.st.Projects)
	st.Tolls = slices.Clone(s.st.Tolls)
	st.FilteredProjects = slices.Clone(s.st.FilteredProjects)
	return st
}

func (s *Store) notify() {
	s.mu.Lock()
	snap := s.snapshot()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(State), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
