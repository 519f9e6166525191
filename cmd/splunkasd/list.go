package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/splunkasd/splunkasd/internal/common/logger"
	"github.com/splunkasd/splunkasd/internal/common/output"
	"github.com/splunkasd/splunkasd/internal/ledger"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the tracked apps and their recorded versions",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	if err := resolveSettings(); err != nil {
		return err
	}

	appsFile := resolver.Value("apps", "file")
	if appsFile == "" {
		return errors.New("no apps file configured: use --apps_file, SPLUNK_ASD_FILE, or the [apps] file key")
	}

	entries, err := ledger.New(appsFile).Entries()
	if err != nil {
		return err
	}

	displayEntries(entries)
	return nil
}

// displayEntries formats and displays the tracked apps
func displayEntries(entries []ledger.Entry) {
	if len(entries) == 0 {
		logger.Info("No apps tracked")
		return
	}

	fmt.Println()
	output.Header.Println("Tracked Apps")
	fmt.Println()

	for _, e := range entries {
		output.Package.Printf("  %s\n", e.Name)
		fmt.Printf("    UID:     %s\n", e.UID)
		fmt.Printf("    Version: %s\n", e.Version)
		if e.UpdatedTime != "" {
			fmt.Printf("    Updated: %s\n", e.UpdatedTime)
		}
		fmt.Println()
	}

	output.Info.Printf("Total: %d app(s)\n", len(entries))
}
