package downloader

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultConcurrency = 8

// Task is one (url, relative path, filename) unit of work. An empty
// Filename means the name is taken from the last URL path segment.
type Task struct {
	URL      string
	Path     string
	Filename string
}

// Config is the frozen run configuration.
type Config struct {
	// Destination is the root every task path is joined to.
	Destination string

	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration

	Headers             http.Header
	Proxies             []ProxyRule
	DisableDefaultProxy bool

	HashCheck  bool
	OnlyBinary bool
	AutoRename bool

	// Concurrency is the number of permits. Zero means 8.
	Concurrency int

	// Logger receives engine logs. Nil means the logrus standard logger.
	Logger logrus.FieldLogger
}

func (config Config) clone() Config {
	config.Headers = config.Headers.Clone()
	if config.Headers == nil {
		config.Headers = http.Header{}
	}

	config.Proxies = append([]ProxyRule(nil), config.Proxies...)

	if config.Concurrency <= 0 {
		config.Concurrency = defaultConcurrency
	}

	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}

	return config
}

// Builder collects tasks and settings before a run. It is not safe for
// concurrent use.
type Builder struct {
	config Config
	tasks  []Task
	seen   map[Task]struct{}
}

// NewBuilder returns a Builder with default settings.
func NewBuilder() *Builder {
	return &Builder{
		config: Config{
			Headers:     http.Header{},
			Concurrency: defaultConcurrency,
		},
		seen: make(map[Task]struct{}),
	}
}

// AddTask registers a task. Identical triples are registered once.
func (builder *Builder) AddTask(url, path, filename string) {
	task := Task{URL: url, Path: path, Filename: filename}
	if _, ok := builder.seen[task]; ok {
		return
	}

	builder.seen[task] = struct{}{}
	builder.tasks = append(builder.tasks, task)
}

// Len returns the number of registered tasks.
func (builder *Builder) Len() int {
	return len(builder.tasks)
}

// SetDestination sets the root folder. Relative roots resolve against the
// working directory when Run starts.
func (builder *Builder) SetDestination(path string) {
	builder.config.Destination = path
}

// SetTimeout bounds each request. Zero disables the timeout.
func (builder *Builder) SetTimeout(timeout time.Duration) {
	builder.config.Timeout = timeout
}

// SetHashCheck makes existing files compare against the remote content
// instead of failing with FileExisted.
func (builder *Builder) SetHashCheck(enabled bool) {
	builder.config.HashCheck = enabled
}

// SetBinaryOnly rejects HTML and JavaScript responses with FileIsNotBinary.
func (builder *Builder) SetBinaryOnly(enabled bool) {
	builder.config.OnlyBinary = enabled
}

// SetAutoRename appends the content-type subtype to files saved without an
// extension.
func (builder *Builder) SetAutoRename(enabled bool) {
	builder.config.AutoRename = enabled
}

// SetLogger sets the engine logger.
func (builder *Builder) SetLogger(logger logrus.FieldLogger) {
	builder.config.Logger = logger
}

// AddHeader appends a default request header. Repeated names keep every
// value.
func (builder *Builder) AddHeader(name, value string) {
	builder.config.Headers.Add(name, value)
}

// AddProxy appends a proxy rule. Rules are consulted in insertion order.
func (builder *Builder) AddProxy(scope ProxyScope, proxyURL string) error {
	rule, err := NewProxyRule(scope, proxyURL)
	if err != nil {
		return err
	}

	builder.config.Proxies = append(builder.config.Proxies, rule)

	return nil
}

// DisableDefaultProxy ignores HTTP_PROXY and friends for requests no rule
// matches.
func (builder *Builder) DisableDefaultProxy() {
	builder.config.DisableDefaultProxy = true
}

// EnableDefaultProxy restores the environment proxy fallback.
func (builder *Builder) EnableDefaultProxy() {
	builder.config.DisableDefaultProxy = false
}

// SetConcurrency sets the permit count; n must be positive.
func (builder *Builder) SetConcurrency(n int) error {
	if n <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", n)
	}

	builder.config.Concurrency = n

	return nil
}

// Build snapshots the registered tasks and settings into an immutable
// Downloader. Later builder changes do not affect it.
func (builder *Builder) Build() *Downloader {
	return New(builder.config, builder.tasks)
}
