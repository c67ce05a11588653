package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"shirodl/src/config"
	"shirodl/src/downloader"
)

type memoryStore struct {
	objects map[string][]byte
	putErr  error
}

func (store *memoryStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := store.objects[key]

	return ok, nil
}

func (store *memoryStore) Put(_ context.Context, key string, r io.Reader) error {
	if store.putErr != nil {
		return store.putErr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	store.objects[key] = data

	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logger
}

func TestMirror_Put(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.bin")

	err := os.WriteFile(path, []byte("content"), 0o644)
	if err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	store := &memoryStore{objects: map[string][]byte{}}
	mirror := &Mirror{store: store, logger: quietLogger()}

	uploaded, err := mirror.Put(context.Background(), path)
	if err != nil || !uploaded {
		t.Fatalf("Put() = %v, %v", uploaded, err)
	}

	key := downloader.HashBytes([]byte("content")).String()
	if string(store.objects[key]) != "content" {
		t.Errorf("expected object under digest key %s", key)
	}

	uploaded, err = mirror.Put(context.Background(), path)
	if err != nil || uploaded {
		t.Errorf("expected second Put to be skipped, got %v, %v", uploaded, err)
	}
}

func TestMirror_PutAllSkipsFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good")
	os.WriteFile(good, []byte("good"), 0o644)

	mirror := &Mirror{store: &memoryStore{objects: map[string][]byte{}}, logger: quietLogger()}

	count := mirror.PutAll(context.Background(), []string{good, filepath.Join(dir, "missing")})
	if count != 1 {
		t.Errorf("expected 1 mirrored file, got %d", count)
	}

	failing := &Mirror{store: &memoryStore{objects: map[string][]byte{}, putErr: errors.New("denied")}, logger: quietLogger()}
	if count := failing.PutAll(context.Background(), []string{good}); count != 0 {
		t.Errorf("expected 0 mirrored files, got %d", count)
	}
}

func TestNewMirror_Disabled(t *testing.T) {
	mirror, err := NewMirror(context.Background(), &config.Config{}, quietLogger())
	if err != nil || mirror != nil {
		t.Errorf("expected nil mirror, got %v, %v", mirror, err)
	}
}
