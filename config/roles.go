package config

import (
	"fmt"
	"os"

	"article-api/rbac"

	"github.com/pelletier/go-toml/v2"
)

type rolesFile struct {
	Roles map[string][]string `toml:"roles"`
}

// LoadRoles builds the role registry from a TOML file, or from the built-in table when
// path is empty.
//
//	[roles]
//	user  = ["getArticles"]
//	admin = ["createArticles", "getArticles", "updateArticles", "deleteArticles"]
func LoadRoles(path string) (*rbac.Registry, error) {
	if path == "" {
		return rbac.NewRegistry(rbac.DefaultRoles())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roles file: %w", err)
	}

	var f rolesFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse roles file %s: %w", path, err)
	}

	reg, err := rbac.NewRegistry(f.Roles)
	if err != nil {
		return nil, fmt.Errorf("roles file %s: %w", path, err)
	}
	return reg, nil
}
