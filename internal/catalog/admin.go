package catalog

import (
	"context"
	"fmt"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type Resource string

const (
	ResourceProduct    Resource = "product"
	ResourceCategory   Resource = "category"
	ResourceTag        Resource = "tag"
	ResourceIngredient Resource = "ingredient"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Mutation names a catalog write. The fixture-backed catalog is read-only,
// so every mutation is reported as unsupported.
type Mutation struct {
	Resource Resource
	Action   Action
	ID       int64
}

func (m Mutation) String() string {
	if m.ID != 0 {
		return fmt.Sprintf("%s %s %d", m.Action, m.Resource, m.ID)
	}
	return fmt.Sprintf("%s %s", m.Action, m.Resource)
}

func (s *service) Apply(ctx context.Context, m Mutation) error {
	switch m.Resource {
	case ResourceProduct, ResourceCategory, ResourceTag, ResourceIngredient:
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown catalog resource").
			WithDetails(map[string]any{"resource": m.Resource})
	}
	switch m.Action {
	case ActionCreate, ActionUpdate, ActionDelete:
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown catalog action").
			WithDetails(map[string]any{"action": m.Action})
	}
	return pkgerrors.Unsupported(m.String())
}
