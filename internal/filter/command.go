package filter

import (
	"context"
	"fmt"
	"slices"

	"github.com/alexanderramin/csrdash/internal/domain"
)

// Patch is an optimistic local change to the cached collections. It is
// never authoritative: Dispatch always reconciles with RefreshData.
type Patch func(st *State)

// Command is a mutation issued against the entity store together with the
// local patch that mirrors it.
type Command interface {
	Name() string
	Execute(ctx context.Context) error
	Patch() Patch
}

type command struct {
	name  string
	run   func(ctx context.Context) error
	patch Patch
}

// NewCommand builds a Command. patch may be nil.
func NewCommand(name string, run func(ctx context.Context) error, patch Patch) Command {
	return &command{name: name, run: run, patch: patch}
}

func (c *command) Name() string                      { return c.name }
func (c *command) Execute(ctx context.Context) error { return c.run(ctx) }
func (c *command) Patch() Patch                      { return c.patch }

// Dispatch executes cmd; on success it applies the command's patch, notifies
// subscribers and reloads from the store. A failed command leaves the cache
// untouched.
func (s *Store) Dispatch(ctx context.Context, cmd Command) error {
	if err := cmd.Execute(ctx); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	if patch := cmd.Patch(); patch != nil {
		s.mu.Lock()
		before := s.st.Selection()
		patch(&s.st)
		after := s.st.Selection()
		if after.PartnerID != before.PartnerID {
			s.save(KeyPartner, after.PartnerID)
		}
		if after.ProjectID != before.ProjectID {
			s.save(KeyProject, after.ProjectID)
		}
		s.recompute()
		s.mu.Unlock()
		s.notify()
	}
	s.RefreshData(ctx)
	return nil
}

// AppendProject adds a top-level project to the cache.
func AppendProject(p *domain.Project) Patch {
	return func(st *State) {
		if p.IsSubProject() {
			return
		}
		st.Projects = append(st.Projects, p)
	}
}

// RemoveProject drops a project from the cache and clears it if selected.
func RemoveProject(id string) Patch {
	return func(st *State) {
		st.Projects = slices.DeleteFunc(st.Projects, func(p *domain.Project) bool { return p.ID == id })
		if st.SelectedProject == id {
			st.SelectedProject = ""
		}
	}
}

// AppendPartner adds a partner to the cache.
func AppendPartner(p *domain.CSRPartner) Patch {
	return func(st *State) {
		st.Partners = append(st.Partners, p)
	}
}

// RemovePartner drops a partner and, with it, its projects from the cache.
func RemovePartner(id string) Patch {
	return func(st *State) {
		st.Partners = slices.DeleteFunc(st.Partners, func(p *domain.CSRPartner) bool { return p.ID == id })
		st.Projects = slices.DeleteFunc(st.Projects, func(p *domain.Project) bool { return p.CSRPartnerID == id })
		if st.SelectedPartner == id {
			st.SelectedPartner, st.SelectedToll, st.SelectedProject = "", "", ""
			st.Tolls = nil
		}
	}
}

// AppendToll adds a toll to the cache when it belongs to the selected partner.
func AppendToll(t *domain.Toll) Patch {
	return func(st *State) {
		if t.CSRPartnerID == st.SelectedPartner {
			st.Tolls = append(st.Tolls, t)
		}
	}
}

// RemoveToll drops a toll and its projects from the cache.
func RemoveToll(id string) Patch {
	return func(st *State) {
		st.Tolls = slices.DeleteFunc(st.Tolls, func(t *domain.Toll) bool { return t.ID == id })
		st.Projects = slices.DeleteFunc(st.Projects, func(p *domain.Project) bool { return domain.StrVal(p.TollID) == id })
		if st.SelectedToll == id {
			st.SelectedToll, st.SelectedProject = "", ""
		}
	}
}
