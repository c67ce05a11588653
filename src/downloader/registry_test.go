package downloader

import (
	"testing"
	"time"
)

func TestBuilder_AddTaskDeduplicates(t *testing.T) {
	builder := NewBuilder()

	builder.AddTask("http://example.com/a.png", "img", "")
	builder.AddTask("http://example.com/a.png", "img", "")

	if builder.Len() != 1 {
		t.Errorf("expected 1 task, got %d", builder.Len())
	}

	builder.AddTask("http://example.com/a.png", "img", "b.png")
	builder.AddTask("http://example.com/a.png", "other", "")

	if builder.Len() != 3 {
		t.Errorf("expected 3 tasks, got %d", builder.Len())
	}
}

func TestBuilder_SetConcurrency(t *testing.T) {
	builder := NewBuilder()

	if err := builder.SetConcurrency(0); err == nil {
		t.Error("expected error for zero concurrency")
	}

	if err := builder.SetConcurrency(3); err != nil {
		t.Fatalf("SetConcurrency failed: %v", err)
	}

	if got := builder.Build().Config().Concurrency; got != 3 {
		t.Errorf("expected concurrency 3, got %d", got)
	}
}

func TestBuilder_Defaults(t *testing.T) {
	config := NewBuilder().Build().Config()

	if config.Concurrency != defaultConcurrency {
		t.Errorf("expected concurrency %d, got %d", defaultConcurrency, config.Concurrency)
	}

	if config.HashCheck || config.OnlyBinary || config.AutoRename {
		t.Error("expected all flags off by default")
	}

	if config.Logger == nil {
		t.Error("expected a default logger")
	}
}

func TestBuilder_BuildIsSnapshot(t *testing.T) {
	builder := NewBuilder()
	builder.AddTask("http://example.com/a", ".", "")
	builder.AddHeader("X-Token", "one")
	builder.SetTimeout(time.Second)

	downloader := builder.Build()

	builder.AddTask("http://example.com/b", ".", "")
	builder.AddHeader("X-Token", "two")
	builder.SetTimeout(time.Minute)

	if len(downloader.Tasks()) != 1 {
		t.Errorf("expected 1 task in snapshot, got %d", len(downloader.Tasks()))
	}

	config := downloader.Config()
	if values := config.Headers.Values("X-Token"); len(values) != 1 || values[0] != "one" {
		t.Errorf("expected snapshot header [one], got %v", values)
	}

	if config.Timeout != time.Second {
		t.Errorf("expected timeout 1s, got %v", config.Timeout)
	}
}

func TestBuilder_AddHeaderMultiValued(t *testing.T) {
	builder := NewBuilder()
	builder.AddHeader("Accept", "image/png")
	builder.AddHeader("Accept", "image/webp")

	if values := builder.Build().Config().Headers.Values("Accept"); len(values) != 2 {
		t.Errorf("expected 2 values, got %v", values)
	}
}

func TestBuilder_AddProxy(t *testing.T) {
	builder := NewBuilder()

	if err := builder.AddProxy(ProxyHTTPS, "http://127.0.0.1:8080"); err != nil {
		t.Fatalf("AddProxy failed: %v", err)
	}

	err := builder.AddProxy(ProxyAll, "::not a url")
	if err == nil {
		t.Fatal("expected error for unparsable proxy")
	}

	if kind, _ := KindOf(err); kind != KindProxyError {
		t.Errorf("expected ProxyError, got %v", kind)
	}

	if got := len(builder.Build().Config().Proxies); got != 1 {
		t.Errorf("expected 1 proxy rule, got %d", got)
	}
}

func TestNew_DropsDuplicates(t *testing.T) {
	task := Task{URL: "http://example.com/a", Path: "."}

	downloader := New(Config{}, []Task{task, task})

	if len(downloader.Tasks()) != 1 {
		t.Errorf("expected 1 task, got %d", len(downloader.Tasks()))
	}
}
