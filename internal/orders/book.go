package orders

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/kvstore"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// OverrideKey holds the full order list once anything has been written.
const OverrideKey = "orders_override"

//go:embed fixtures/orders.json
var seedOrders []byte

// SeedOrders decodes the bundled demo orders.
func SeedOrders() ([]Order, error) {
	var out []Order
	if err := json.Unmarshal(seedOrders, &out); err != nil {
		return nil, fmt.Errorf("decode seed orders: %w", err)
	}
	return out, nil
}

// Book is the demo order store: seed orders until the first write, then the
// override list kept in the durable store. Writers in one process are
// serialised; across processes the last write wins.
type Book struct {
	store kvstore.Store
	seed  []Order
	mu    sync.Mutex
	now   func() time.Time
}

func NewBook(store kvstore.Store, seed []Order) (*Book, error) {
	if store == nil {
		return nil, fmt.Errorf("order store required")
	}
	return &Book{store: store, seed: seed, now: time.Now}, nil
}

// List returns every order, or only those in status. An empty status or
// "all" disables the filter.
func (b *Book) List(ctx context.Context, status string) ([]Order, error) {
	var filter enums.OrderStatus
	status = strings.TrimSpace(status)
	if status != "" && status != "all" {
		parsed, err := parseStatus(status)
		if err != nil {
			return nil, err
		}
		filter = parsed
	}

	all, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	if filter == "" {
		return all, nil
	}
	out := []Order{}
	for _, o := range all {
		if o.Status == filter {
			out = append(out, o)
		}
	}
	return out, nil
}

// Page lists orders newest first, one cursor page at a time.
func (b *Book) Page(ctx context.Context, status string, params pagination.Params) (pagination.Page[Order], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[Order]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	all, err := b.List(ctx, status)
	if err != nil {
		return pagination.Page[Order]{}, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	limit := pagination.NormalizeLimit(params.Limit)
	page := pagination.Page[Order]{Items: []Order{}}
	for _, o := range all {
		if cursor != nil && !cursor.After(o.CreatedAt, o.ID) {
			continue
		}
		if len(page.Items) == limit {
			last := page.Items[limit-1]
			page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
			break
		}
		page.Items = append(page.Items, o)
	}
	return page, nil
}

func (b *Book) Get(ctx context.Context, id int64) (*Order, error) {
	all, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range all {
		if o.ID == id {
			found := o
			return &found, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

// UpdateStatus stores any valid status. Transitions are not enforced.
func (b *Book) UpdateStatus(ctx context.Context, id int64, status string) (*Order, error) {
	next, err := parseStatus(status)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	all, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID != id {
			continue
		}
		all[i].Status = next
		all[i].UpdatedAt = b.now().UTC()
		if err := b.save(ctx, all); err != nil {
			return nil, err
		}
		updated := all[i]
		return &updated, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

// Append records a newly created order.
func (b *Book) Append(ctx context.Context, order Order) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	all, err := b.load(ctx)
	if err != nil {
		return err
	}
	return b.save(ctx, append(all, order))
}

func (b *Book) Delete(ctx context.Context, id int64) error {
	return pkgerrors.Unsupported("delete order")
}

// load returns the override list when present and readable, else a copy of the seed.
func (b *Book) load(ctx context.Context) ([]Order, error) {
	raw, ok, err := b.store.Get(ctx, OverrideKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders")
	}
	if ok {
		var override []Order
		if err := json.Unmarshal([]byte(raw), &override); err == nil && override != nil {
			return override, nil
		}
	}
	return append([]Order{}, b.seed...), nil
}

func (b *Book) save(ctx context.Context, all []Order) error {
	raw, err := json.Marshal(all)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode orders")
	}
	if err := b.store.Set(ctx, OverrideKey, string(raw)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save orders")
	}
	return nil
}

func parseStatus(raw string) (enums.OrderStatus, error) {
	status, err := enums.ParseOrderStatus(strings.TrimSpace(raw))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status").
			WithDetails(map[string]any{"status": raw, "allowed": enums.OrderStatuses()})
	}
	return status, nil
}
