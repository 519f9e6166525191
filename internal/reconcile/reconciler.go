// Package reconcile drives the per-app update cycle: compare the recorded
// version of each tracked app against the latest Splunkbase release,
// download newer releases, and record them back into the apps file.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/splunkasd/splunkasd/internal/common/logger"
	"github.com/splunkasd/splunkasd/internal/ledger"
	"github.com/splunkasd/splunkasd/internal/splunkbase"
)

// Reconciler walks the apps file sequentially. One app's
// query/download/update cycle completes before the next begins; the apps
// file is the only mutated resource and is rewritten per successful
// download.
type Reconciler struct {
	client    *splunkbase.Client
	ledger    *ledger.Ledger
	outputDir string
	log       *logger.Logger
	// nowFunc allows injecting time for testing
	nowFunc func() time.Time
}

// Option is a functional option for configuring Reconciler
type Option func(*Reconciler)

// WithLogger sets the logger used for progress and error reporting
func WithLogger(log *logger.Logger) Option {
	return func(r *Reconciler) {
		r.log = log
	}
}

// WithNowFunc sets a custom time function for testing
func WithNowFunc(fn func() time.Time) Option {
	return func(r *Reconciler) {
		r.nowFunc = fn
	}
}

// New creates a reconciler over the given apps file and download directory.
func New(client *splunkbase.Client, appsFile, outputDir string, opts ...Option) *Reconciler {
	r := &Reconciler{
		client:    client,
		ledger:    ledger.New(appsFile),
		outputDir: outputDir,
		log:       logger.Default(),
		nowFunc:   time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run checks every tracked app for updates and downloads newer releases.
// It returns the labels of downloaded and skipped apps in apps-file order.
// An unauthenticated client or an unreadable apps file aborts the run with
// two empty lists; per-app failures skip that app and continue.
func (r *Reconciler) Run(ctx context.Context) (downloaded, skipped []string) {
	downloaded = []string{}
	skipped = []string{}

	if !r.client.Authenticated() {
		r.log.Error("Not authenticated. Call Authenticate first.")
		return downloaded, skipped
	}

	entries, err := r.ledger.Entries()
	if err != nil {
		r.log.Error("Error reading apps file: %v", err)
		return downloaded, skipped
	}

	r.log.Info("Checking updates for %d apps...", len(entries))

	for _, entry := range entries {
		latest, err := r.client.LatestVersion(ctx, entry.UID)
		if err != nil {
			r.log.Warn("Could not retrieve latest version for %s: %v", entry.UID, err)
			skipped = append(skipped, entry.Label())
			continue
		}

		if latest == entry.Version {
			r.log.Info("App %s is up to date (version %s)", entry.UID, entry.Version)
			skipped = append(skipped, entry.Label())
			continue
		}

		r.log.Info("Update available for %s: %s -> %s", entry.UID, entry.Version, latest)

		label := fmt.Sprintf("%s_%s_%s", entry.Name, entry.UID, latest)

		updatedTime, err := r.download(ctx, entry.Name, entry.UID, latest)
		if err != nil {
			r.log.Error("Error downloading %s v%s: %v", entry.UID, latest, err)
			skipped = append(skipped, label)
			continue
		}
		if updatedTime == "" {
			// Archive already on disk.
			skipped = append(skipped, label)
			continue
		}

		if err := r.ledger.Update(entry.UID, latest, updatedTime); err != nil {
			if errors.Is(err, ledger.ErrEntryNotFound) {
				r.log.Warn("App %s not found in %s", entry.UID, r.ledger.Path())
			} else {
				r.log.Error("Error updating apps file: %v", err)
			}
		} else {
			r.log.Info("Updated %s with new version for %s: %s", r.ledger.Path(), entry.UID, latest)
		}
		downloaded = append(downloaded, label)
	}

	return downloaded, skipped
}

// download fetches one release archive to the output directory. It returns
// the update timestamp, or "" with a nil error when the archive already
// exists on disk. Existence of the target file is the sole already-
// downloaded signal; content is never re-verified.
func (r *Reconciler) download(ctx context.Context, name, uid, version string) (string, error) {
	fileName := fmt.Sprintf("%s_%s_%s.tgz", name, uid, version)

	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(r.outputDir, fileName)

	if _, err := os.Stat(path); err == nil {
		r.log.Info("Skipping download of %s (already exists)", fileName)
		return "", nil
	}

	r.log.Info("Downloading %s...", path)
	body, lastModified, err := r.client.DownloadRelease(ctx, uid, version)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, body, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	// Prefer the server timestamp; fall back to current UTC time.
	updatedTime := lastModified
	if updatedTime == "" {
		updatedTime = r.nowFunc().UTC().Format(time.RFC3339)
	}

	r.log.Info("Successfully downloaded %s", path)
	return updatedTime, nil
}
