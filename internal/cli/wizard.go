package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/csrdash/internal/cli/formatter"
	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/filter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// csrHuhTheme returns a huh theme using the formatter palette.
func csrHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithTheme(csrHuhTheme()).WithShowHelp(false)
}

// ── validators ───────────────────────────────────────────────────────────────

// validateNonNegativeInt accepts empty or a non-negative integer.
func validateNonNegativeInt(s string) error {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return fmt.Errorf("enter a non-negative number")
	}
	return nil
}

// validateAmount accepts empty or a non-negative rupee amount.
func validateAmount(s string) error {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || v < 0 {
		return fmt.Errorf("enter an amount in rupees")
	}
	return nil
}

func validateOptionalDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	return nil
}

func validateProjectCode(s string) error {
	p := domain.Project{ProjectCode: strings.ToUpper(strings.TrimSpace(s))}
	return p.ValidateCode()
}

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

// ── project wizard ───────────────────────────────────────────────────────────

// runProjectWizard prompts for the core project fields and writes the
// answers back as flags so the usual flag handling applies.
func runProjectWizard(cmd *cobra.Command, f *projectFlags, beneficiaries *int) error {
	budget, count := "", strconv.Itoa(*beneficiaries)
	form := newForm(
		huh.NewGroup(
			huh.NewInput().Title("Project code").Placeholder("SHN-2024-01").Value(&f.code).Validate(validateProjectCode),
			huh.NewInput().Title("Name").Value(&f.name).Validate(required("Name")),
			huh.NewInput().Title("Nature of work").Value(&f.work),
			huh.NewInput().Title("Total budget (INR)").Value(&budget).Validate(validateAmount),
		),
		huh.NewGroup(
			huh.NewInput().Title("Beneficiary sub-projects").Value(&count).Validate(validateNonNegativeInt),
			huh.NewInput().Title("Start date").Placeholder("YYYY-MM-DD").Value(&f.start).Validate(validateOptionalDate),
			huh.NewInput().Title("End date").Placeholder("YYYY-MM-DD").Value(&f.end).Validate(validateOptionalDate),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	answers := map[string]string{
		"code":          f.code,
		"name":          f.name,
		"work":          f.work,
		"budget":        strings.ReplaceAll(budget, ",", ""),
		"beneficiaries": count,
		"start":         f.start,
		"end":           f.end,
	}
	for name, value := range answers {
		if value == "" {
			continue
		}
		if err := cmd.Flags().Set(name, value); err != nil {
			return fmt.Errorf("applying %s: %w", name, err)
		}
	}
	return nil
}

// ── filter picker ────────────────────────────────────────────────────────────

const anyOption = ""

func partnerOptions(st filter.State) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("All partners", anyOption)}
	for _, p := range st.Partners {
		opts = append(opts, huh.NewOption(p.DisplayName(), p.ID).Selected(p.ID == st.SelectedPartner))
	}
	return opts
}

func tollOptions(st filter.State) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("All tolls", anyOption)}
	for _, t := range st.Tolls {
		opts = append(opts, huh.NewOption(t.DisplayName(), t.ID).Selected(t.ID == st.SelectedToll))
	}
	return opts
}

func projectOptions(st filter.State) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("All projects", anyOption)}
	candidates := filter.Derive(st.Projects, filter.Selection{PartnerID: st.SelectedPartner, TollID: st.SelectedToll})
	for _, p := range candidates {
		label := fmt.Sprintf("%s  %s", p.DisplayID(), p.Name)
		opts = append(opts, huh.NewOption(label, p.ID).Selected(p.ID == st.SelectedProject))
	}
	return opts
}

func wizardSelect(title string, options []huh.Option[string], result *string) *huh.Form {
	return newForm(huh.NewGroup(
		huh.NewSelect[string]().Title(title).Options(options...).Value(result),
	))
}

// runFilterPicker walks partner, toll and project selection. Each answer is
// applied to the store before the next question so options narrow.
func runFilterPicker(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	store := app.Filters

	partnerID := store.State().SelectedPartner
	if err := wizardSelect("Partner", partnerOptions(store.State()), &partnerID).Run(); err != nil {
		return err
	}
	if err := store.SelectPartner(ctx, partnerID); err != nil {
		return err
	}

	if st := store.State(); partnerID != "" && len(st.Tolls) > 0 {
		tollID := st.SelectedToll
		if err := wizardSelect("Toll", tollOptions(st), &tollID).Run(); err != nil {
			return err
		}
		if err := store.SelectToll(tollID); err != nil {
			return err
		}
	}

	projectID := store.State().SelectedProject
	if err := wizardSelect("Project", projectOptions(store.State()), &projectID).Run(); err != nil {
		return err
	}
	return store.SelectProject(projectID)
}
