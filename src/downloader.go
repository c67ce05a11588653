package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"shirodl/src/config"
	"shirodl/src/downloader"
)

// newBuilder translates the merged config and task list into a downloader
// builder. Proxy errors surface here, before any task is dispatched.
func newBuilder(cfg *config.Config, tasks []config.TaskEntry, logger logrus.FieldLogger) (*downloader.Builder, error) {
	settings := cfg.Settings
	builder := downloader.NewBuilder()

	builder.SetLogger(logger)
	builder.SetDestination(settings.Destination)
	builder.SetTimeout(settings.Timeout)
	builder.SetHashCheck(settings.HashCheckEnabled())
	builder.SetBinaryOnly(settings.OnlyBinary)
	builder.SetAutoRename(settings.AutoRename)

	if settings.NoDefaultProxy {
		builder.DisableDefaultProxy()
	}

	for _, header := range settings.Headers {
		builder.AddHeader(header.Name, header.Value)
	}

	for _, proxy := range settings.Proxies {
		scope, err := downloader.ParseProxyScope(proxy.Scope)
		if err != nil {
			return nil, fmt.Errorf("proxy %s: %w", proxy.URL, err)
		}

		err = builder.AddProxy(scope, proxy.URL)
		if err != nil {
			return nil, fmt.Errorf("proxy %s: %w", proxy.URL, err)
		}
	}

	if settings.Parallel > 0 {
		err := builder.SetConcurrency(settings.Parallel)
		if err != nil {
			return nil, err
		}
	}

	if settings.Retries > 0 {
		logger.WithField("retries", settings.Retries).Warn("retries is accepted but each task is attempted once")
	}

	for _, task := range tasks {
		path := task.Path
		if path == "" {
			path = "."
		}

		builder.AddTask(task.URL, path, task.Filename)
	}

	return builder, nil
}
