// Package secrets loads per-site login credentials from a YAML file
// kept outside the repository. Values loaded here must never be
// logged unmasked; AllValues feeds the log masker.
package secrets

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Ronaldozero7/HeyQ/internal/pages"
)

type siteEntry struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Store holds credentials keyed by site name.
type Store struct {
	sites map[string]siteEntry
}

// Load reads a secrets file of the form:
//
//	sites:
//	  saucedemo:
//	    username: standard_user
//	    password: secret_sauce
func Load(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read secrets: %w", err)
	}
	var doc struct {
		Sites map[string]siteEntry `yaml:"sites"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse secrets %s: %w", path, err)
	}
	return &Store{sites: doc.Sites}, nil
}

// Empty returns a store with no credentials; flows skip their login
// steps against it.
func Empty() *Store {
	return &Store{sites: map[string]siteEntry{}}
}

// For returns the credentials for a site, when configured.
func (s *Store) For(site pages.Site) (pages.Credentials, bool) {
	entry, ok := s.sites[string(site)]
	if !ok || entry.Username == "" {
		return pages.Credentials{}, false
	}
	return pages.Credentials{Username: entry.Username, Password: entry.Password}, true
}

// AllValues lists every secret value, for masking in log output.
func (s *Store) AllValues() []string {
	var values []string
	for _, entry := range s.sites {
		if entry.Password != "" {
			values = append(values, entry.Password)
		}
	}
	return values
}
