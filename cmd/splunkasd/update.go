package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/splunkasd/splunkasd/internal/common/logger"
	"github.com/splunkasd/splunkasd/internal/common/output"
	"github.com/splunkasd/splunkasd/internal/reconcile"
	"github.com/splunkasd/splunkasd/internal/splunkbase"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check tracked apps and download newer releases",
	Long: `Authenticate with Splunkbase, compare each tracked app's recorded version
against the latest release, download updated archives to the output
directory, and record the new versions in the apps file.

Examples:
  splunkasd update -u admin -p secret -a apps.json -o ./downloads
  splunkasd update --config splunkasd.yaml
  SPLUNK_ASD_USERNAME=admin SPLUNK_ASD_PASSWORD=secret splunkasd update -a apps.json`,
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if err := resolveSettings(); err != nil {
		return err
	}

	appsFile := resolver.Value("apps", "file")
	if appsFile == "" {
		return errors.New("no apps file configured: use --apps_file, SPLUNK_ASD_FILE, or the [apps] file key")
	}
	outputDir := resolver.Value("apps", "output")

	ctx := cmd.Context()
	client := splunkbase.NewClient()

	logger.Info("Authenticating with Splunkbase...")
	err := client.Authenticate(ctx,
		resolver.Value("splunkbase", "username"),
		resolver.Value("splunkbase", "password"))
	if err != nil {
		return fmt.Errorf("authenticating with Splunkbase: %w", err)
	}
	logger.Info("Authentication successful")

	rec := reconcile.New(client, appsFile, outputDir)
	downloaded, skipped := rec.Run(ctx)

	if err := ctx.Err(); err != nil {
		return err
	}

	displaySummary(downloaded, skipped)
	return nil
}

// displaySummary prints the downloaded and skipped app labels.
func displaySummary(downloaded, skipped []string) {
	output.List("Downloaded apps:", downloaded, "No new apps downloaded")
	output.List("Skipped apps:", skipped, "No apps skipped")
	fmt.Println()
	output.PrintSuccess("Process completed")
}
