package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/repository"
)

// resolvePartnerID accepts a full ID, an ID prefix or a case-insensitive
// partner name.
func resolvePartnerID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("partner is required")
	}
	partners, err := app.Partners.List(ctx, true)
	if err != nil {
		return "", err
	}

	for _, p := range partners {
		if p.ID == input || strings.EqualFold(p.Name, input) {
			return p.ID, nil
		}
	}

	var matches []string
	for _, p := range partners {
		if strings.HasPrefix(p.ID, input) {
			matches = append(matches, p.ID)
		}
	}
	return pickOne("partner", input, matches)
}

// resolveTollID looks a toll up by ID, ID prefix or name among the tolls of
// active partners. partnerID narrows the search when set.
func resolveTollID(ctx context.Context, app *App, partnerID, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("toll is required")
	}
	if t, err := app.Tolls.GetByID(ctx, input); err == nil {
		return t.ID, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	partnerIDs := []string{partnerID}
	if partnerID == "" {
		partners, err := app.Partners.List(ctx, false)
		if err != nil {
			return "", err
		}
		partnerIDs = partnerIDs[:0]
		for _, p := range partners {
			partnerIDs = append(partnerIDs, p.ID)
		}
	}

	var matches []string
	for _, pid := range partnerIDs {
		tolls, err := app.Tolls.ListByPartner(ctx, pid)
		if err != nil {
			return "", err
		}
		for _, t := range tolls {
			if strings.EqualFold(t.DisplayName(), input) || strings.HasPrefix(t.ID, input) {
				matches = append(matches, t.ID)
			}
		}
	}
	return pickOne("toll", input, matches)
}

// resolveProject accepts an ID or a project code. An empty input falls back
// to the project selected in the filter context.
func resolveProject(ctx context.Context, app *App, input string) (*domain.Project, error) {
	if input == "" {
		input = app.Filters.State().SelectedProject
		if input == "" {
			return nil, fmt.Errorf("project is required (pass one or select it with 'csrdash filter project')")
		}
	}
	p, err := app.Projects.Resolve(ctx, input)
	if errors.Is(err, repository.ErrNotFound) && input != strings.ToUpper(input) {
		p, err = app.Projects.Resolve(ctx, strings.ToUpper(input))
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("project not found: %q", input)
	}
	return p, err
}

func pickOne(kind, input string, matches []string) (string, error) {
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s not found: %q", kind, input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s %q is ambiguous (%d matches)", kind, input, len(matches))
	}
}

// parseOptionalDate parses YYYY-MM-DD; empty input yields nil.
func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return &t, nil
}
