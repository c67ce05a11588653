package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"shirodl/src/config"
	"shirodl/src/downloader"
	"shirodl/src/storage"
)

// Mirror copies completed downloads to object storage, keyed by their
// BLAKE3 digest.
type Mirror struct {
	store  storage.Store
	logger logrus.FieldLogger
}

// NewMirror creates a Mirror from config.
// Returns nil if mirroring is not enabled.
func NewMirror(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*Mirror, error) {
	alias, ok := cfg.GetMirrorAlias()
	if !ok {
		return nil, nil
	}

	store, err := storage.NewStore(ctx, alias)
	if err != nil {
		return nil, err
	}

	return &Mirror{store: store, logger: logger}, nil
}

// Put uploads the file at path unless its digest is already stored.
// It reports whether an upload happened.
func (mirror *Mirror) Put(ctx context.Context, path string) (bool, error) {
	digest, err := downloader.HashFile(path)
	if err != nil {
		return false, fmt.Errorf("hashing %s: %w", path, err)
	}

	key := digest.String()

	exists, err := mirror.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("checking mirror: %w", err)
	}

	if exists {
		return false, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("opening source file: %w", err)
	}

	defer file.Close()

	err = mirror.store.Put(ctx, key, file)
	if err != nil {
		return false, fmt.Errorf("uploading to mirror: %w", err)
	}

	return true, nil
}

// PutAll mirrors every path and returns how many are present in the
// mirror afterwards. Failures are logged, never fatal.
func (mirror *Mirror) PutAll(ctx context.Context, paths []string) int {
	var mirrored int

	for _, path := range paths {
		uploaded, err := mirror.Put(ctx, path)
		if err != nil {
			mirror.logger.WithField("file", path).WithError(err).Warn("could not mirror file")

			continue
		}

		mirror.logger.WithField("file", path).WithField("uploaded", uploaded).Debug("mirrored")

		mirrored++
	}

	return mirrored
}
