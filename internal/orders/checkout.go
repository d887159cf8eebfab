package orders

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/validation"
	"golang.org/x/sync/singleflight"
)

const defaultSubmitTimeout = 10 * time.Second

// Checkout submits a session cart as an order. Concurrent submissions of the
// same form for the same session share one in-flight call and its result.
type Checkout struct {
	carts     cart.Service
	submitter Submitter
	logg      *logger.Logger
	metrics   *metrics.Storefront
	timeout   time.Duration
	group     singleflight.Group
}

type CheckoutOption func(*Checkout)

func WithSubmitTimeout(d time.Duration) CheckoutOption {
	return func(c *Checkout) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithMetrics(m *metrics.Storefront) CheckoutOption {
	return func(c *Checkout) { c.metrics = m }
}

func NewCheckout(carts cart.Service, submitter Submitter, logg *logger.Logger, opts ...CheckoutOption) (*Checkout, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if submitter == nil {
		return nil, fmt.Errorf("order submitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	c := &Checkout{carts: carts, submitter: submitter, logg: logg, timeout: defaultSubmitTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Submit validates the form, builds the request from the cart and submits
// it. The cart is cleared only after a successful submission.
//
// Callers sending the same session and form while a submission is in flight
// receive that submission's order. A different form for the same session
// waits for the session lock and then sees the drained cart. The shared call
// is detached from the caller's cancellation and bounded only by the submit
// timeout; a caller whose context ends first gets a dependency error while
// the submission carries on.
func (c *Checkout) Submit(ctx context.Context, session string, form CheckoutForm) (*Order, error) {
	if err := validation.Struct(form); err != nil {
		return nil, err
	}
	key, err := submissionKey(session, form)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode checkout form")
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return c.submit(shared, session, form)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Order), nil
	case <-ctx.Done():
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "order submission abandoned")
	}
}

func submissionKey(session string, form CheckoutForm) (string, error) {
	b, err := json.Marshal(form)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return session + ":" + hex.EncodeToString(sum[:]), nil
}

func (c *Checkout) submit(ctx context.Context, session string, form CheckoutForm) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ctx = c.logg.WithCartSession(ctx, session)

	start := time.Now()
	var order *Order
	err := c.carts.Drain(ctx, session, func(ctx context.Context, current cart.Cart) error {
		if current.IsEmpty() {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		created, err := c.submitter.Create(ctx, BuildRequest(form, current.Items))
		if err != nil {
			return err
		}
		order = created
		return nil
	})
	if err != nil && order != nil {
		// the order exists; failing here would invite a duplicate on retry
		c.logg.Warn(c.logg.WithFields(c.logg.WithOrderID(ctx, order.ID), map[string]any{
			"order_number": order.OrderNumber,
			"error":        err.Error(),
		}), "order created but cart was not cleared")
		err = nil
	}
	if err != nil {
		c.metrics.ObserveSubmission(metrics.OutcomeFailed, time.Since(start))
		if ctx.Err() != nil && pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order submission timed out")
		}
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "order submission failed")
		return nil, err
	}

	c.metrics.ObserveSubmission(metrics.OutcomeCreated, time.Since(start))
	c.logg.Info(c.logg.WithFields(c.logg.WithOrderID(ctx, order.ID), map[string]any{
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount.String(),
	}), "order submitted")
	return order, nil
}
