// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value. Environment variables override files.
//
// Supported key files: bhl-api-key, crossref-mailto.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// envOverrides maps key-file names to environment variables that take
// precedence. BHL_API_KEY follows the convention the BHL documentation uses.
var envOverrides = map[string]string{
	"bhl-api-key":     "BHL_API_KEY",
	"crossref-mailto": "CROSSREF_MAILTO",
}

// Load reads all files in dir and returns a map of filename to trimmed contents,
// with environment overrides applied. A missing directory or missing files are
// not errors; Load returns the overrides alone, or an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	secrets := make(map[string]string)

	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	for name, envVar := range envOverrides {
		if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
			secrets[name] = v
		}
	}

	return secrets, nil
}
