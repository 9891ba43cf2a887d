// Package store persists run output: local JSON artifacts for inspection
// and re-publishing, and the Firestore collection the app reads.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/partyfinder/scraper/internal/event"
)

// Artifacts writes run output to a local data directory. Raw scrape output
// and the transformed records are kept side by side, so a publish can be
// replayed without re-scraping.
type Artifacts struct {
	dataDir string
}

// NewArtifacts creates the data directory if needed. A leading ~ expands to
// the user's home directory.
func NewArtifacts(dataDir string) (*Artifacts, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Artifacts{dataDir: dataDir}, nil
}

// Dir returns the resolved data directory.
func (a *Artifacts) Dir() string {
	return a.dataDir
}

func (a *Artifacts) recordsPath() string {
	return filepath.Join(a.dataDir, "events.json")
}

// RunInfo is the artifact envelope: the records plus when and how they were
// produced.
type RunInfo struct {
	ScrapedAt time.Time      `json:"scrapedAt"`
	Venues    int            `json:"venues"`
	Failures  int            `json:"failures"`
	Records   []event.Record `json:"records"`
}

// WriteRecords saves the transformed records atomically.
func (a *Artifacts) WriteRecords(info RunInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}

	tmp := a.recordsPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}
	if err := os.Rename(tmp, a.recordsPath()); err != nil {
		return fmt.Errorf("replacing records: %w", err)
	}
	return nil
}

// LoadRecords reads the latest saved run. A missing file returns an empty
// run rather than an error.
func (a *Artifacts) LoadRecords() (RunInfo, error) {
	data, err := os.ReadFile(a.recordsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return RunInfo{}, nil
		}
		return RunInfo{}, fmt.Errorf("reading records: %w", err)
	}

	var info RunInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return RunInfo{}, fmt.Errorf("parsing records: %w", err)
	}
	return info, nil
}

// WriteRaw saves one venue's raw scrape output for debugging.
func (a *Artifacts) WriteRaw(slug string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding raw output: %w", err)
	}

	path := filepath.Join(a.dataDir, fmt.Sprintf("raw_%s.json", slug))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing raw output: %w", err)
	}
	return nil
}
