package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/namkunwoo/workreport-front/internal/domain"
)

const (
	exportScopeAll   = "all"
	exportScopeRange = "range"
)

// exportFields holds form-bound values for the export wizard.
type exportFields struct {
	scope string
	start string
	end   string
}

// newExportView downloads all reports or a date range into the export
// directory. The range defaults to the visible month.
func newExportView(state *SharedState) View {
	b := state.Board
	month := b.Calendar.Month()
	f := &exportFields{
		scope: exportScopeAll,
		start: domain.FormatDate(month),
		end:   domain.FormatDate(month.AddDate(0, 1, -1)),
	}

	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Export").
				Options(
					huh.NewOption("All reports", exportScopeAll),
					huh.NewOption("Date range", exportScopeRange),
				).
				Value(&f.scope),
		),
		huh.NewGroup(
			huh.NewInput().Title("Start date").Placeholder("YYYY-MM-DD").Value(&f.start).Validate(validateOptionalDate),
			huh.NewInput().Title("End date").Placeholder("YYYY-MM-DD").Value(&f.end).Validate(validateOptionalDate),
		).WithHideFunc(func() bool { return f.scope != exportScopeRange }),
	)

	done := func() tea.Cmd {
		return applyExport(state, f)
	}
	return newWizardView(state, "Export", form, done)
}

// applyExport starts the export described by f. Blank or unparsable
// bounds are passed on as zero so the board reports the range problem.
func applyExport(state *SharedState, f *exportFields) tea.Cmd {
	b := state.Board
	if f.scope != exportScopeRange {
		return b.ExportAll()
	}
	start, _ := domain.ParseDate(f.start)
	end, _ := domain.ParseDate(f.end)
	return b.ExportRange(start, end)
}

// importFields holds form-bound values for the import wizard.
type importFields struct {
	path    string
	mode    string
	confirm bool
}

// newImportView uploads a spreadsheet. Replace asks once more because it
// deletes every existing report.
func newImportView(state *SharedState) View {
	f := &importFields{mode: string(domain.ImportAppend)}

	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("File").
				Placeholder("reports.xlsx").
				Value(&f.path),
			huh.NewSelect[string]().
				Title("Mode").
				Options(
					huh.NewOption("Append to existing reports", string(domain.ImportAppend)),
					huh.NewOption("Replace all existing reports", string(domain.ImportReplace)),
				).
				Value(&f.mode),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Replace deletes every existing report. Continue?").
				Affirmative("Replace").
				Negative("Cancel").
				Value(&f.confirm),
		).WithHideFunc(func() bool { return f.mode != string(domain.ImportReplace) }),
	)

	done := func() tea.Cmd {
		return applyImport(state, f)
	}
	return newWizardView(state, "Import", form, done)
}

// applyImport starts the upload described by f.
func applyImport(state *SharedState, f *importFields) tea.Cmd {
	mode := domain.ImportMode(f.mode)
	if mode == domain.ImportReplace && !f.confirm {
		return nil
	}
	return state.Board.Import(f.path, mode)
}
