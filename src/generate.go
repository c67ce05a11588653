package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"shirodl/src/config"
)

// GenerateOutput represents the output structure for generated config.
type GenerateOutput struct {
	Tasks []config.TaskEntry `yaml:"tasks"`
}

func runGenerate(args []string, stdout, stderr io.Writer) int {
	var outputFile string

	i := 0
	for i < len(args) {
		if args[i] == "-o" {
			if i+1 >= len(args) {
				fmt.Fprintf(stderr, "error: -o flag requires an argument\n")

				return ExitInvalidArgs
			}

			outputFile = args[i+1]
			args = append(args[:i], args[i+2:]...)
		} else {
			i++
		}
	}

	if len(args) != 1 {
		fmt.Fprintf(stderr, "error: generate command requires exactly one task list argument\n")
		fmt.Fprintf(stderr, "Usage: shirodl generate <list> [-o output.yaml]\n")

		return ExitInvalidArgs
	}

	data, err := generateConfig(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "error generating config: %v\n", err)

		return ExitGeneralError
	}

	if outputFile == "" {
		stdout.Write(data)

		return ExitSuccess
	}

	err = os.WriteFile(outputFile, data, 0o600)
	if err != nil {
		fmt.Fprintf(stderr, "error writing output file: %v\n", err)

		return ExitGeneralError
	}

	fmt.Fprintf(stdout, "generated config written to %s\n", outputFile)

	return ExitSuccess
}

// generateConfig converts a line-delimited or JSON task list into the
// tasks section of a config file.
func generateConfig(listPath string) ([]byte, error) {
	info, err := os.Stat(listPath)
	if err != nil {
		return nil, fmt.Errorf("accessing task list: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory: %s", listPath)
	}

	tasks, err := readTaskFile(listPath)
	if err != nil {
		return nil, err
	}

	if len(tasks) == 0 {
		return nil, fmt.Errorf("no downloadable URLs found in %s", listPath)
	}

	data, err := yaml.Marshal(GenerateOutput{Tasks: dedupeEntries(tasks)})
	if err != nil {
		return nil, fmt.Errorf("marshaling to yaml: %w", err)
	}

	return data, nil
}

func dedupeEntries(tasks []config.TaskEntry) []config.TaskEntry {
	seen := make(map[config.TaskEntry]struct{}, len(tasks))
	unique := make([]config.TaskEntry, 0, len(tasks))

	for _, task := range tasks {
		if _, ok := seen[task]; ok {
			continue
		}

		seen[task] = struct{}{}
		unique = append(unique, task)
	}

	return unique
}
