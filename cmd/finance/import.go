package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/finance-tracker/internal/cli"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/ofx"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions from bank files",
	}
	cmd.AddCommand(importOFXCmd())
	return cmd
}

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ofx <files...>",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX (Quicken) files exported from your bank
onto one account. Each file is imported atomically; transactions whose
bank id (FITID) is already on the account are skipped, so importing the
same statement twice is harmless.

Examples:
  # Import a single file
  finance import ofx ~/Downloads/chase_jan_2024.qfx --account "Main Checking"

  # Import every QFX file in a directory
  finance import ofx ~/Downloads/*.qfx --account "Main Checking"`,
		Args: cobra.MinimumNArgs(1),
		RunE: withApp(runImportOFX),
	}

	cmd.Flags().StringP("account", "a", "", "account to import into (required)")
	cmd.Flags().BoolP("dry-run", "d", false, "parse and list transactions without saving")
	return cmd
}

func expandFiles(patterns []string) []string {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil || len(matches) == 0 {
			if _, statErr := os.Stat(pattern); statErr == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}
	return files
}

func runImportOFX(cmd *cobra.Command, args []string, a *app) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	files := expandFiles(args)
	if len(files) == 0 {
		return fmt.Errorf("no files found to import")
	}

	interruptHandler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "OFX import")
	ctx, stop := interruptHandler.HandleInterrupts(cmd.Context())
	defer stop()

	var accountID string
	if !dryRun {
		id, err := resolveAccountFlag(ctx, cmd, a.svc, "account")
		if err != nil {
			return err
		}
		if id == nil {
			return fmt.Errorf("--account is required")
		}
		accountID = *id
	}

	parser := ofx.NewParser()
	out := cmd.OutOrStdout()
	var imported, skipped int

	for _, path := range files {
		drafts, err := parseOFXFile(cmd, parser, path)
		if err != nil {
			return err
		}
		if len(drafts) == 0 {
			slog.Warn("No transactions found in file", "file", filepath.Base(path))
			continue
		}

		if dryRun {
			fmt.Fprintln(out, cli.FormatTitle(filepath.Base(path)))
			t := cli.NewTable(out, "Date", "Amount", "FITID", "Description")
			for _, d := range drafts {
				t.Row(model.FormatDate(d.Date), model.FormatMoney(d.Amount), d.FITID, d.Description)
			}
			if err := t.Flush(); err != nil {
				return err
			}
			continue
		}

		bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(drafts), filepath.Base(path))
		result, err := ofx.NewImporter(a.svc, bar).Import(ctx, accountID, drafts)
		if err != nil {
			if interruptHandler.WasInterrupted() {
				return nil
			}
			return fmt.Errorf("failed to import %s: %w", filepath.Base(path), err)
		}
		imported += result.Imported
		skipped += result.Skipped
	}

	if !dryRun {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transaction(s), skipped %d already present", imported, skipped)))
	}
	return nil
}

func parseOFXFile(cmd *cobra.Command, parser *ofx.Parser, path string) ([]ofx.Draft, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	drafts, err := parser.ParseFile(cmd.Context(), f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return drafts, nil
}
