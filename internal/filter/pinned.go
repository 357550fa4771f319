package filter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/alexanderramin/csrdash/internal/domain"
)

// ErrNoProjectContext means no pinned project has been recorded.
var ErrNoProjectContext = errors.New("no project context recorded")

// ProjectContext is the deep-link record for a pinned project dashboard.
type ProjectContext struct {
	ProjectID   string          `json:"projectId"`
	PartnerID   string          `json:"partnerId"`
	TollID      string          `json:"tollId,omitempty"`
	ProjectRole domain.TeamRole `json:"projectRole"`
}

// SaveProjectContext records pc under KeyProjectContext as JSON.
func SaveProjectContext(p Persistence, pc ProjectContext) error {
	if pc.ProjectID == "" || pc.PartnerID == "" {
		return fmt.Errorf("project context needs a project and a partner")
	}
	b, err := json.Marshal(pc)
	if err != nil {
		return fmt.Errorf("encoding project context: %w", err)
	}
	return p.Set(KeyProjectContext, string(b))
}

// LoadProjectContext reads the recorded context.
func LoadProjectContext(p Persistence) (*ProjectContext, error) {
	raw, err := p.Get(KeyProjectContext)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, ErrNoProjectContext
	}
	var pc ProjectContext
	if err := json.Unmarshal([]byte(raw), &pc); err != nil {
		return nil, fmt.Errorf("decoding project context: %w", err)
	}
	return &pc, nil
}

// ClearProjectContext forgets the recorded context.
func ClearProjectContext(p Persistence) error {
	return p.Remove(KeyProjectContext)
}

// Pin applies the recorded project context as the selection and locks the
// filters. The returned release func unlocks them and is safe to call more
// than once.
func (s *Store) Pin(ctx context.Context) (*ProjectContext, func(), error) {
	pc, err := LoadProjectContext(s.persist)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	s.setPartner(pc.PartnerID)
	s.setToll(pc.TollID)
	s.setProject(pc.ProjectID)
	s.st.FiltersLocked = true
	s.mu.Unlock()
	s.notify()

	s.loadTolls(ctx, pc.PartnerID)

	var once sync.Once
	release := func() {
		once.Do(s.UnlockFilters)
	}
	return pc, release, nil
}
