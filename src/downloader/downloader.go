package downloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Report describes one completed task. Err is nil on success.
type Report struct {
	Task

	// SavedAs is the file the content ended up in, empty when nothing was
	// saved.
	SavedAs string

	Err error
}

// Failure is a task that did not end in success.
type Failure struct {
	Task
	Err *Error
}

// ReportFunc receives every completed task. Calls never overlap.
type ReportFunc func(Report)

// Downloader runs a frozen set of tasks.
type Downloader struct {
	config Config
	tasks  []Task
}

// New returns a Downloader over copies of config and tasks. Duplicate
// tasks are dropped.
func New(config Config, tasks []Task) *Downloader {
	seen := make(map[Task]struct{}, len(tasks))
	unique := make([]Task, 0, len(tasks))

	for _, task := range tasks {
		if _, ok := seen[task]; ok {
			continue
		}

		seen[task] = struct{}{}
		unique = append(unique, task)
	}

	return &Downloader{
		config: config.clone(),
		tasks:  unique,
	}
}

// Tasks returns a copy of the task list.
func (downloader *Downloader) Tasks() []Task {
	return append([]Task(nil), downloader.tasks...)
}

// Config returns the frozen configuration.
func (downloader *Downloader) Config() Config {
	return downloader.config.clone()
}

// Run downloads every task and returns the failures in task order. The
// returned error is a *SetupError and is only set when a pre-flight step
// failed, in which case no task was started. ctx is handed to requests
// only; one task failing never stops another.
func (downloader *Downloader) Run(ctx context.Context, onComplete ReportFunc) ([]Failure, error) {
	log := downloader.config.Logger

	client, err := NewClient(downloader.config)
	if err != nil {
		return nil, &SetupError{Stage: "client", Err: asError(err, KindClientBuild)}
	}

	root, err := prepareRoot(downloader.config.Destination)
	if err != nil {
		return nil, err
	}

	log.WithField("tasks", len(downloader.tasks)).
		WithField("destination", root).
		WithField("concurrency", downloader.config.Concurrency).
		Info("starting downloads")

	worker := &worker{
		client:     client,
		root:       root,
		hashCheck:  downloader.config.HashCheck,
		onlyBinary: downloader.config.OnlyBinary,
		autoRename: downloader.config.AutoRename,
		logger:     log,
	}

	results := make([]*Error, len(downloader.tasks))
	permits := semaphore.NewWeighted(int64(downloader.config.Concurrency))

	var (
		wg       sync.WaitGroup
		reportMu sync.Mutex
	)

	for i, task := range downloader.tasks {
		// Acquire never fails with a background context; dispatch stays
		// bounded even when the caller's ctx is cancelled.
		_ = permits.Acquire(context.Background(), 1)

		wg.Add(1)

		go func(index int, task Task) {
			defer wg.Done()
			defer permits.Release(1)

			savedAs, err := worker.download(ctx, task)

			report := Report{Task: task, Err: err}
			if err == nil {
				report.SavedAs = savedAs
			} else {
				results[index] = asError(err, KindIOError)
				report.Err = results[index]
			}

			if onComplete != nil {
				reportMu.Lock()
				onComplete(report)
				reportMu.Unlock()
			}
		}(i, task)
	}

	wg.Wait()

	var failures []Failure

	for i, result := range results {
		if result == nil {
			continue
		}

		failures = append(failures, Failure{Task: downloader.tasks[i], Err: result})
	}

	log.WithField("failures", len(failures)).Info("downloads finished")

	return failures, nil
}

// prepareRoot resolves the destination to an absolute directory, creating
// it when absent.
func prepareRoot(destination string) (string, error) {
	if destination == "" {
		destination = "."
	}

	root, err := filepath.Abs(destination)
	if err != nil {
		return "", &SetupError{Stage: "destination", Err: newError(KindIOError, err)}
	}

	info, err := os.Stat(root)

	switch {
	case err != nil:
		err = os.MkdirAll(root, 0o755)
		if err != nil {
			return "", &SetupError{Stage: "destination", Err: newError(KindFailedToCreateFolder, err)}
		}
	case !info.IsDir():
		return "", &SetupError{Stage: "destination", Err: newError(KindFolderExistedAsFile, nil)}
	}

	return root, nil
}

func asError(err error, fallback Kind) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return newError(fallback, err)
}
