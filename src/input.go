package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"shirodl/src/config"
)

// readTaskFile reads a task list from path. Files ending in .json are
// decoded as JSON regardless of content.
func readTaskFile(path string) ([]config.TaskEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task list: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return parseJSONTasks(data)
	}

	return parseTaskList(data)
}

// readTaskList reads a line-delimited or JSON task list.
func readTaskList(r io.Reader) ([]config.TaskEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading task list: %w", err)
	}

	return parseTaskList(data)
}

func parseTaskList(data []byte) ([]config.TaskEntry, error) {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		return parseJSONTasks(data)
	}

	return parseLines(data)
}

// parseLines keeps every line that is an http or https URL. Blank lines
// and lines starting with # are skipped.
func parseLines(data []byte) ([]config.TaskEntry, error) {
	var tasks []config.TaskEntry

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !isDownloadableURL(line) {
			continue
		}

		tasks = append(tasks, config.TaskEntry{URL: line, Path: "."})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning task list: %w", err)
	}

	return tasks, nil
}

// parseJSONTasks accepts an array of URL strings or of task objects.
func parseJSONTasks(data []byte) ([]config.TaskEntry, error) {
	var urls []string

	if err := json.Unmarshal(data, &urls); err == nil {
		tasks := make([]config.TaskEntry, 0, len(urls))
		for _, u := range urls {
			tasks = append(tasks, config.TaskEntry{URL: u, Path: "."})
		}

		return tasks, nil
	}

	var tasks []config.TaskEntry

	err := json.Unmarshal(data, &tasks)
	if err != nil {
		return nil, fmt.Errorf("parsing JSON task list: %w", err)
	}

	for i := range tasks {
		if tasks[i].URL == "" {
			return nil, fmt.Errorf("task %d: url is required", i)
		}

		if tasks[i].Path == "" {
			tasks[i].Path = "."
		}
	}

	return tasks, nil
}

func isDownloadableURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
