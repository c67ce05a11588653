package config

import "time"

// Config represents the root configuration structure.
type Config struct {
	Aliases  map[string]Alias `yaml:"aliases"`
	Mirror   MirrorConfig     `yaml:"mirror"`
	Settings Settings         `yaml:"settings"`
	Tasks    []TaskEntry      `yaml:"tasks"`
}

// Alias represents an S3 storage backend configuration.
type Alias struct {
	Endpoint      string `yaml:"endpoint"`
	Region        string `yaml:"region"`
	Bucket        string `yaml:"bucket"`
	Prefix        string `yaml:"prefix"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	NoSignRequest bool   `yaml:"no_sign_request"`
}

// MirrorConfig selects the alias completed downloads are copied to.
type MirrorConfig struct {
	Alias   string `yaml:"alias"`
	Enabled bool   `yaml:"enabled"`
}

// Settings represents download settings.
type Settings struct {
	Destination string        `yaml:"destination"`
	Parallel    int           `yaml:"parallel"`
	Timeout     time.Duration `yaml:"timeout"`

	// Retries is accepted for compatibility; downloads are attempted once.
	Retries int `yaml:"retries"`

	HashCheck      *bool `yaml:"hash_check"`
	OnlyBinary     bool  `yaml:"only_binary"`
	AutoRename     bool  `yaml:"auto_rename"`
	NoDefaultProxy bool  `yaml:"no_default_proxy"`

	Headers []Header     `yaml:"headers"`
	Proxies []ProxyEntry `yaml:"proxies"`
}

// Header is one default request header.
type Header struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// ProxyEntry routes the requests of a scope (http, https or all) through URL.
type ProxyEntry struct {
	Scope string `yaml:"scope"`
	URL   string `yaml:"url"`
}

// TaskEntry represents a file to download.
type TaskEntry struct {
	URL      string `yaml:"url" json:"url"`
	Path     string `yaml:"path,omitempty" json:"path,omitempty"`
	Filename string `yaml:"filename,omitempty" json:"filename,omitempty"`
}
