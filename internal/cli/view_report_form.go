package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/namkunwoo/workreport-front/internal/workreport"
)

// newReportFormView opens the create form or edit dialog for d. Every
// field is bound to the draft, so typing is what makes it dirty.
func newReportFormView(state *SharedState, d *workreport.Draft) View {
	f := &d.Fields
	b := state.Board

	var first []huh.Field
	if d.Err != nil {
		first = append(first, huh.NewNote().Title("Not saved").Description(d.Err.Error()))
	}
	if d.Kind == workreport.DraftEdit {
		first = append(first, huh.NewInput().
			Title("Date").
			Description("Change to move the report to another day").
			Value(&f.WorkDate).
			Validate(validateDate))
	} else {
		first = append(first, huh.NewNote().Title("Date").Description(f.WorkDate))
	}
	first = append(first,
		huh.NewInput().Title("Client").Value(&f.ClientName).Validate(validateRequired("client")),
		huh.NewInput().Title("Project").Value(&f.ProjectName).Validate(validateRequired("project")),
		huh.NewInput().Title("System (optional)").Value(&f.SystemName),
		huh.NewInput().Title("PJ code (optional)").Value(&f.PJCode),
	)

	form := newForm(
		huh.NewGroup(first...),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Work type").
				Options(workTypeOptions()...).
				Value(&f.WorkType).
				Validate(validateRequired("work type")),
			huh.NewInput().
				Title("Hours").
				Placeholder("8").
				Value(&f.WorkHours).
				Validate(validateHours),
			huh.NewConfirm().Title("Out of office?").Value(&f.IsOut),
			huh.NewInput().
				Title("Location (optional)").
				Description("Filling this marks the report as out of office").
				Value(&f.OutLocation),
			huh.NewConfirm().Title("Backup for a teammate?").Value(&f.IsBackup),
			huh.NewInput().Title("Co-workers (optional)").Value(&f.SupportTeamMember),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Support products").
				Options(productOptions(f.Products)...).
				Height(8).
				Value(&f.Products),
			huh.NewText().
				Title("Description").
				Lines(4).
				Value(&f.WorkDescription).
				Validate(validateRequired("description")),
		),
	)

	title := "New report"
	if d.Kind == workreport.DraftEdit {
		title = "Edit report"
	}

	done := func() tea.Cmd {
		var cmd tea.Cmd
		if d.Kind == workreport.DraftEdit {
			cmd = b.SubmitEdit()
		} else {
			cmd = b.SubmitCreate()
		}
		if workreport.IsValidation(d.Err) {
			return pushView(newReportFormView(state, d))
		}
		return cmd
	}

	cancel := func() tea.Cmd {
		if d.Kind == workreport.DraftEdit {
			b.CloseEdit()
		} else {
			b.CloseCreate()
		}
		if b.Pending() != nil {
			return pushView(newConfirmView(state))
		}
		return nil
	}

	return newWizardView(state, title, form, done).onCancel(cancel)
}
