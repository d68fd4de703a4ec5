package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/gocarina/gocsv"
)

// OutputManager writes window stats to CSV.
type OutputManager struct {
	dir           string
	telemetryFile *os.File

	// Track if the header has been written
	headerWritten bool
}

// NewOutputManager creates the output directory and telemetry.csv.
// Returns nil if dir is empty (output disabled); all methods accept a nil
// manager.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating telemetry.csv: %w", err)
	}
	return &OutputManager{dir: dir, telemetryFile: f}, nil
}

// WriteConfig saves the effective run configuration as TOML next to the CSV.
func (om *OutputManager) WriteConfig(cfg any) error {
	if om == nil {
		return nil
	}
	f, err := os.Create(filepath.Join(om.dir, "config.toml"))
	if err != nil {
		return fmt.Errorf("creating config.toml: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config.toml: %w", err)
	}
	return nil
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}

	records := []WindowStats{stats}

	if !om.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.telemetryFile); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		om.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.telemetryFile); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes the CSV file.
func (om *OutputManager) Close() error {
	if om == nil || om.telemetryFile == nil {
		return nil
	}
	return om.telemetryFile.Close()
}
