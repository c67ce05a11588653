package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"shirodl/src/downloader"
)

// FailureReport is the YAML document written by -report.
type FailureReport struct {
	RunID       string          `yaml:"run_id"`
	GeneratedAt time.Time       `yaml:"generated_at"`
	Total       int             `yaml:"total"`
	Ignorable   int             `yaml:"ignorable"`
	Unignorable int             `yaml:"unignorable"`
	Failures    []FailureRecord `yaml:"failures"`
}

// FailureRecord is one failed task.
type FailureRecord struct {
	URL       string `yaml:"url"`
	Path      string `yaml:"path"`
	Filename  string `yaml:"filename,omitempty"`
	Kind      string `yaml:"kind"`
	Ignorable bool   `yaml:"ignorable"`
	Error     string `yaml:"error"`
}

func summarize(failures []downloader.Failure) (ignorable, unignorable int) {
	for _, failure := range failures {
		if failure.Err.Ignorable() {
			ignorable++
		} else {
			unignorable++
		}
	}

	return ignorable, unignorable
}

func buildReport(runID string, total int, failures []downloader.Failure, now time.Time) FailureReport {
	ignorable, unignorable := summarize(failures)

	report := FailureReport{
		RunID:       runID,
		GeneratedAt: now.UTC(),
		Total:       total,
		Ignorable:   ignorable,
		Unignorable: unignorable,
		Failures:    make([]FailureRecord, 0, len(failures)),
	}

	for _, failure := range failures {
		report.Failures = append(report.Failures, FailureRecord{
			URL:       failure.URL,
			Path:      failure.Path,
			Filename:  failure.Filename,
			Kind:      failure.Err.Kind.String(),
			Ignorable: failure.Err.Ignorable(),
			Error:     failure.Err.Error(),
		})
	}

	return report
}

func writeReport(path string, report FailureReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	return nil
}
