// Package rbac holds the role table and the gate that checks it.
package rbac

import (
	"errors"
	"fmt"
	"sort"
)

// Action names a capability a role may hold.
type Action string

const (
	CreateUsers    Action = "createUsers"
	GetUsers       Action = "getUsers"
	UpdateUsers    Action = "updateUsers"
	DeleteUsers    Action = "deleteUsers"
	CreateArticles Action = "createArticles"
	GetArticles    Action = "getArticles"
	UpdateArticles Action = "updateArticles"
	DeleteArticles Action = "deleteArticles"
)

// ErrUnknownRole is returned for roles missing from the table.
var ErrUnknownRole = errors.New("unknown role")

// DefaultRoles is used when no role file is configured.
func DefaultRoles() map[string][]string {
	return map[string][]string{
		"user": {string(GetArticles)},
		"admin": {
			string(CreateUsers),
			string(GetUsers),
			string(UpdateUsers),
			string(DeleteUsers),

			string(CreateArticles),
			string(GetArticles),
			string(UpdateArticles),
			string(DeleteArticles),
		},
	}
}

// Registry maps role names to granted actions. It is copied on construction and never
// mutated afterwards, so it can be shared across requests without locking.
type Registry struct {
	rights map[string]map[Action]struct{}
}

// NewRegistry validates table and deep copies it.
func NewRegistry(table map[string][]string) (*Registry, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("role table is empty")
	}

	rights := make(map[string]map[Action]struct{}, len(table))
	for role, actions := range table {
		if role == "" {
			return nil, fmt.Errorf("role name must not be empty")
		}
		set := make(map[Action]struct{}, len(actions))
		for _, a := range actions {
			if a == "" {
				return nil, fmt.Errorf("role %q: action name must not be empty", role)
			}
			set[Action(a)] = struct{}{}
		}
		rights[role] = set
	}

	return &Registry{rights: rights}, nil
}

// RightsOf returns a copy of the actions granted to role.
func (r *Registry) RightsOf(role string) (map[Action]struct{}, error) {
	set, ok := r.rights[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	out := make(map[Action]struct{}, len(set))
	for a := range set {
		out[a] = struct{}{}
	}
	return out, nil
}

func (r *Registry) has(role string, action Action) (bool, error) {
	set, ok := r.rights[role]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	_, granted := set[action]
	return granted, nil
}

// Roles returns the registered role names in sorted order.
func (r *Registry) Roles() []string {
	roles := make([]string, 0, len(r.rights))
	for role := range r.rights {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}
