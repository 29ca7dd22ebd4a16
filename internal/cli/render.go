package cli

import (
	"fmt"
	"strings"

	"lotsweep/internal/flow"
	"lotsweep/internal/model"
	"lotsweep/internal/selection"
)

// RenderSelection renders the category selection view as plain terminal text.
func RenderSelection(vm selection.ViewModel) string {
	var b strings.Builder
	b.WriteString(FormatTitle("Delete listings"))
	b.WriteString("\n")

	for _, cat := range vm.Categories {
		if vm.Chosen[cat.ID] {
			b.WriteString(ChosenStyle.Render(fmt.Sprintf("  [x] %s", cat.Name)))
		} else {
			b.WriteString(fmt.Sprintf("  [ ] %s", cat.Name))
		}
		b.WriteString("\n")
	}

	b.WriteString(SubtleStyle.Render("Choose the categories whose listings you want to delete"))
	b.WriteString("\n")
	return b.String()
}

// RenderConfirm renders the confirmation prompt.
func RenderConfirm(view flow.ConfirmView) string {
	var b strings.Builder
	b.WriteString(WarningStyle.Render("❗ Confirm deletion"))
	b.WriteString("\n")
	b.WriteString("Are you sure you want to delete the listings in the chosen categories?")
	b.WriteString("\n")
	return b.String()
}

// RenderReport renders the final deletion report summary.
func RenderReport(report *model.DeletionReport) string {
	var b strings.Builder
	if !report.HasFailures() {
		b.WriteString(FormatSuccess(fmt.Sprintf("Done! Deleted %d listings.", report.SuccessCount)))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(FormatWarning("Done, with errors"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Deleted listings: %d\n", report.SuccessCount))
	b.WriteString(fmt.Sprintf("  Failed attempts:  %d\n", report.ErrorCount))
	for _, failure := range report.Failures {
		if failure.ListingID == 0 {
			b.WriteString(ErrorStyle.Render(fmt.Sprintf("  %s category %d: %s", ErrorIcon, failure.CategoryID, failure.Message)))
		} else {
			b.WriteString(ErrorStyle.Render(fmt.Sprintf("  %s listing %d: %s", ErrorIcon, failure.ListingID, failure.Message)))
		}
		b.WriteString("\n")
	}
	return b.String()
}
