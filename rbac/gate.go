package rbac

import "article-api/models"

// Gate decides whether a role may perform an action.
type Gate struct {
	registry *Registry
}

func NewGate(registry *Registry) *Gate {
	return &Gate{registry: registry}
}

// Authorize returns nil when action is granted to role and models.ErrorForbidden
// otherwise. An unregistered role is denied the same way.
func (g *Gate) Authorize(role string, action Action) error {
	granted, err := g.registry.has(role, action)
	if err != nil || !granted {
		return models.ErrorForbidden{Role: role, Action: string(action)}
	}
	return nil
}
