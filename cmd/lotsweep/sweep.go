package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"lotsweep/internal/cli"
	"lotsweep/internal/common"
	"lotsweep/internal/model"
	"lotsweep/internal/tui"
)

func sweepCmd() *cobra.Command {
	var (
		sweepAll    bool
		categoryIDs []int64
		interactive bool
		skipConfirm bool
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Bulk-delete listings in the chosen categories",
		Long: `Delete the listings in one or more categories in a single sequential,
rate-limited pass. Failures on individual listings are reported at the end and
never abort the rest of the batch.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := initApp()
			if err != nil {
				return err
			}

			if interactive {
				return tui.Run(application.router)
			}

			if !sweepAll && len(categoryIDs) == 0 {
				return errors.New("nothing selected: pass --all, --category, or --interactive")
			}

			ctx := cmd.Context()

			categories, err := application.client.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}
			if len(categories) == 0 {
				fmt.Println(cli.InfoStyle.Render("No categories found. Nothing to sweep."))
				return nil
			}

			recordID := application.store.Create(categories, nil, false)
			if sweepAll {
				if err := application.controller.SelectAll(recordID); err != nil {
					return err
				}
			} else {
				known := make(map[int64]string, len(categories))
				for _, cat := range categories {
					known[cat.ID] = cat.Name
				}
				for _, id := range categoryIDs {
					if _, ok := known[id]; !ok {
						return fmt.Errorf("unknown category id %d (run 'lotsweep categories')", id)
					}
					if err := application.store.AddChosen(recordID, id); err != nil {
						return err
					}
				}
			}

			vm, err := application.controller.BuildViewModel(recordID)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatTitle("Delete listings"))
			for _, cat := range vm.Categories {
				if vm.Chosen[cat.ID] {
					fmt.Println(cli.ChosenStyle.Render("  " + cli.SuccessIcon + " " + cat.Name))
				}
			}

			if !skipConfirm {
				if !promptYesNo(fmt.Sprintf("Delete all listings in %d categories?", vm.ChosenCount())) {
					fmt.Println(cli.InfoStyle.Render("Aborted. Nothing deleted."))
					application.store.Delete(recordID)
					return nil
				}
			}

			bar := progressbar.NewOptions(-1,
				progressbar.OptionSetDescription("deleting listings"),
				progressbar.OptionSpinnerType(14),
				progressbar.OptionSetWriter(os.Stderr),
			)
			application.executor.OnAttempt = func(_ model.Listing, _ error) {
				_ = bar.Add(1)
			}

			report, err := application.executor.Execute(ctx, recordID)
			_ = bar.Finish()
			fmt.Fprintln(os.Stderr)
			if err != nil {
				if errors.Is(err, common.ErrEmptySelection) {
					return errors.New("no categories chosen, nothing to delete")
				}
				return err
			}

			// Partial success still exits zero; the report carries the details.
			fmt.Print(cli.RenderReport(report))
			return nil
		},
	}

	cmd.Flags().BoolVar(&sweepAll, "all", false, "delete listings in every category")
	cmd.Flags().Int64SliceVar(&categoryIDs, "category", nil, "category id to sweep (repeatable)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick categories interactively")
	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func promptYesNo(question string) bool {
	fmt.Printf("%s [y/N]: ", cli.WarningStyle.Render(question))
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
