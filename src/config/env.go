package config

import (
	"os"
	"regexp"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ExpandEnvVars substitutes ${VAR} references. Unset variables are kept as
// written so a missing secret shows up verbatim in error messages.
func ExpandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(ref string) string {
		if value, ok := os.LookupEnv(ref[2 : len(ref)-1]); ok {
			return value
		}

		return ref
	})
}

func expandEnv(cfg *Config) {
	for name, alias := range cfg.Aliases {
		for _, field := range []*string{
			&alias.Endpoint, &alias.Region, &alias.Bucket,
			&alias.Prefix, &alias.AccessKey, &alias.SecretKey,
		} {
			*field = ExpandEnvVars(*field)
		}

		cfg.Aliases[name] = alias
	}

	for i := range cfg.Settings.Headers {
		cfg.Settings.Headers[i].Value = ExpandEnvVars(cfg.Settings.Headers[i].Value)
	}

	for i := range cfg.Settings.Proxies {
		cfg.Settings.Proxies[i].URL = ExpandEnvVars(cfg.Settings.Proxies[i].URL)
	}
}
