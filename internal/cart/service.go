package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/customization"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/kvstore"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/google/uuid"
)

const keyPrefix = "cart:"

// Service manages session carts. Every mutation is persisted before it returns.
type Service interface {
	Get(ctx context.Context, session string) (*Cart, error)
	AddItem(ctx context.Context, session string, product catalog.Product, quantity int, override *customization.Override) (*Item, error)
	RemoveItem(ctx context.Context, session string, itemID uuid.UUID) (*Cart, error)
	RemoveItemAt(ctx context.Context, session string, index int) (*Cart, error)
	UpdateQuantity(ctx context.Context, session string, itemID uuid.UUID, quantity int) (*Cart, error)
	UpdateQuantityAt(ctx context.Context, session string, index int, quantity int) (*Cart, error)
	Clear(ctx context.Context, session string) error
	Drain(ctx context.Context, session string, fn func(ctx context.Context, c Cart) error) error
}

type service struct {
	store   kvstore.Store
	locks   *sessionLocks
	metrics *metrics.Storefront
}

// NewService constructs a cart service over the durable store. m may be nil.
func NewService(store kvstore.Store, m *metrics.Storefront) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	return &service{store: store, locks: newSessionLocks(), metrics: m}, nil
}

// Key is the storage key of a session cart.
func Key(session string) string {
	return keyPrefix + session
}

func (s *service) Get(ctx context.Context, session string) (*Cart, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}
	return s.load(ctx, session)
}

// AddItem appends a new line built from the product defaults and the
// override. Identical lines are never merged.
func (s *service) AddItem(ctx context.Context, session string, product catalog.Product, quantity int, override *customization.Override) (*Item, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"quantity": quantity})
	}
	custom := customization.Apply(customization.Default(product), override)
	if err := customization.ValidateNewSelection(product, custom); err != nil {
		return nil, err
	}
	item := Item{
		ID:            uuid.New(),
		Product:       product.Clone(),
		Quantity:      quantity,
		Customization: custom,
	}

	err := s.mutate(ctx, session, "add", func(c *Cart) bool {
		c.Items = append(c.Items, item)
		return true
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveItem deletes the line with itemID. Unknown ids leave the cart unchanged.
func (s *service) RemoveItem(ctx context.Context, session string, itemID uuid.UUID) (*Cart, error) {
	return s.mutateAndReturn(ctx, session, "remove", func(c *Cart) bool {
		return removeAt(c, c.indexOf(itemID))
	})
}

func (s *service) RemoveItemAt(ctx context.Context, session string, index int) (*Cart, error) {
	return s.mutateAndReturn(ctx, session, "remove", func(c *Cart) bool {
		return removeAt(c, index)
	})
}

// UpdateQuantity replaces the quantity of a line in place. A quantity of zero
// or less removes the line.
func (s *service) UpdateQuantity(ctx context.Context, session string, itemID uuid.UUID, quantity int) (*Cart, error) {
	return s.mutateAndReturn(ctx, session, "update_quantity", func(c *Cart) bool {
		return setQuantityAt(c, c.indexOf(itemID), quantity)
	})
}

func (s *service) UpdateQuantityAt(ctx context.Context, session string, index int, quantity int) (*Cart, error) {
	return s.mutateAndReturn(ctx, session, "update_quantity", func(c *Cart) bool {
		return setQuantityAt(c, index, quantity)
	})
}

func (s *service) Clear(ctx context.Context, session string) error {
	if err := validateSession(session); err != nil {
		return err
	}
	unlock := s.locks.lock(session)
	defer unlock()
	if err := s.store.Delete(ctx, Key(session)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	s.metrics.IncCartMutation("clear")
	return nil
}

// Drain hands the current cart to fn while holding the session lock and
// clears the cart only when fn succeeds. A clear failure after fn succeeded
// is still returned.
func (s *service) Drain(ctx context.Context, session string, fn func(ctx context.Context, c Cart) error) error {
	if err := validateSession(session); err != nil {
		return err
	}
	unlock := s.locks.lock(session)
	defer unlock()

	c, err := s.load(ctx, session)
	if err != nil {
		return err
	}
	if err := fn(ctx, *c); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, Key(session)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	s.metrics.IncCartMutation("clear")
	return nil
}

func (s *service) mutateAndReturn(ctx context.Context, session, op string, fn func(c *Cart) bool) (*Cart, error) {
	var out *Cart
	err := s.mutate(ctx, session, op, func(c *Cart) bool {
		changed := fn(c)
		out = c
		return changed
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// mutate loads, applies fn and persists when fn reports a change.
func (s *service) mutate(ctx context.Context, session, op string, fn func(c *Cart) bool) error {
	if err := validateSession(session); err != nil {
		return err
	}
	unlock := s.locks.lock(session)
	defer unlock()

	c, err := s.load(ctx, session)
	if err != nil {
		return err
	}
	if !fn(c) {
		return nil
	}
	if err := s.save(ctx, c); err != nil {
		return err
	}
	s.metrics.IncCartMutation(op)
	return nil
}

func (s *service) load(ctx context.Context, session string) (*Cart, error) {
	raw, ok, err := s.store.Get(ctx, Key(session))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	c := &Cart{Session: session, Items: []Item{}}
	if ok {
		c.Items = Decode(raw)
	}
	return c, nil
}

func (s *service) save(ctx context.Context, c *Cart) error {
	raw, err := Encode(c.Items)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.store.Set(ctx, Key(c.Session), raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

func removeAt(c *Cart, index int) bool {
	if index < 0 || index >= len(c.Items) {
		return false
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
	return true
}

func setQuantityAt(c *Cart, index int, quantity int) bool {
	if quantity <= 0 {
		return removeAt(c, index)
	}
	if index < 0 || index >= len(c.Items) {
		return false
	}
	c.Items[index].Quantity = quantity
	return true
}

func validateSession(session string) error {
	if strings.TrimSpace(session) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart session required")
	}
	return nil
}
