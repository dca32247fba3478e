// Package pkg provides the disc scanning pipeline for PlayStation CD images.
// This file contains the YAML scan report and the image hash it carries.
package pkg

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hansbonini/psxstr/pkg/common"
	"gopkg.in/yaml.v3"
)

// ScanReport is the exported form of a ScanResult.
type ScanReport struct {
	Image        string         `yaml:"image"`
	SHA256       string         `yaml:"sha256"`
	SectorSize   int            `yaml:"sectorSize"`
	Sectors      int            `yaml:"sectors"`
	Counts       SectorCounts   `yaml:"counts"`
	XAStreams    []*XAStream    `yaml:"xaStreams"`
	VideoStreams []*VideoStream `yaml:"videoStreams"`
	Failures     []string       `yaml:"failures,omitempty"`
}

// NewScanReport builds a report for result. Failure texts use the active
// language.
func NewScanReport(image, sha string, sectorSize int, result *ScanResult) *ScanReport {
	r := &ScanReport{
		Image:        filepath.Base(image),
		SHA256:       sha,
		SectorSize:   sectorSize,
		Sectors:      result.Sectors,
		Counts:       result.Counts,
		XAStreams:    result.XAStreams,
		VideoStreams: result.VideoStreams,
	}
	for _, f := range result.Failures {
		text := f.LocalizedMessage()
		if cause := f.Unwrap(); cause != nil {
			text = fmt.Sprintf("%s: %v", text, cause)
		}
		r.Failures = append(r.Failures, fmt.Sprintf("[%s] %s", f.Level(), text))
	}
	return r
}

// WriteYAML encodes the report to w.
func (r *ScanReport) WriteYAML(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("%s: %w", common.ErrFailedToWriteReport, err)
	}
	return encoder.Close()
}

// SaveYAML writes the report to a YAML file.
func (r *ScanReport) SaveYAML(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%s: %w", common.ErrFailedToCreateReport, err)
	}
	defer f.Close()

	if err := r.WriteYAML(f); err != nil {
		return err
	}
	common.LogInfo(common.InfoReportWritten, path)
	return nil
}

// HashImage returns the hex SHA-256 of a disc image file.
func HashImage(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", common.ErrFailedToOpenImage, err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
