package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"shirodl/src/downloader"
)

func sampleFailures() []downloader.Failure {
	return []downloader.Failure{
		{
			Task: downloader.Task{URL: "https://example.com/missing", Path: "."},
			Err:  &downloader.Error{Kind: downloader.KindResourceNotFound},
		},
		{
			Task: downloader.Task{URL: "https://example.com/page", Path: "html", Filename: "index"},
			Err:  &downloader.Error{Kind: downloader.KindFileIsNotBinary},
		},
		{
			Task: downloader.Task{URL: "https://example.com/error", Path: "."},
			Err:  &downloader.Error{Kind: downloader.KindRequestNotOK, StatusCode: 502},
		},
	}
}

func TestSummarize(t *testing.T) {
	ignorable, unignorable := summarize(sampleFailures())

	if ignorable != 1 || unignorable != 2 {
		t.Errorf("summarize() = %d, %d, want 1, 2", ignorable, unignorable)
	}
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	report := buildReport("run-1", 10, sampleFailures(), now)

	err := writeReport(path, report)
	if err != nil {
		t.Fatalf("writeReport() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	var decoded FailureReport

	err = yaml.Unmarshal(data, &decoded)
	if err != nil {
		t.Fatalf("failed to parse report: %v", err)
	}

	if decoded.RunID != "run-1" || decoded.Total != 10 {
		t.Errorf("unexpected header: %+v", decoded)
	}

	if decoded.Ignorable != 1 || decoded.Unignorable != 2 {
		t.Errorf("unexpected counts: %d, %d", decoded.Ignorable, decoded.Unignorable)
	}

	if len(decoded.Failures) != 3 {
		t.Fatalf("expected 3 failures, got %d", len(decoded.Failures))
	}

	last := decoded.Failures[2]
	if last.Kind != "RequestNotOK" || last.Error != "RequestNotOK(502)" || last.Ignorable {
		t.Errorf("unexpected record: %+v", last)
	}

	if decoded.Failures[1].Filename != "index" || !decoded.Failures[1].Ignorable {
		t.Errorf("unexpected record: %+v", decoded.Failures[1])
	}
}

func TestWriteReport_BadPath(t *testing.T) {
	err := writeReport(filepath.Join(t.TempDir(), "missing", "report.yaml"), buildReport("x", 0, nil, time.Now()))
	if err == nil {
		t.Error("expected error for missing directory")
	}
}
