package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"shirodl/src/config"
)

func TestNewS3Store_ObjectKey(t *testing.T) {
	store, err := NewS3Store(context.Background(), config.Alias{
		Endpoint:  "http://localhost:9000",
		Region:    "us-east-1",
		Bucket:    "mirror",
		Prefix:    "blake3/",
		AccessKey: "key",
		SecretKey: "secret",
	})
	if err != nil {
		t.Fatalf("NewS3Store failed: %v", err)
	}

	if store.bucket != "mirror" {
		t.Errorf("expected bucket 'mirror', got %s", store.bucket)
	}

	if got := store.objectKey("abc"); got != "blake3/abc" {
		t.Errorf("expected key 'blake3/abc', got %s", got)
	}
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), config.Alias{Region: "us-east-1"})
	if err == nil {
		t.Error("expected error for alias without bucket")
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "typed", err: fmt.Errorf("wrapped: %w", &types.NotFound{}), expected: true},
		{name: "status text", err: errors.New("StatusCode: 404"), expected: true},
		{name: "other", err: errors.New("access denied"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNotFound(tt.err); got != tt.expected {
				t.Errorf("isNotFound() = %v, want %v", got, tt.expected)
			}
		})
	}
}
