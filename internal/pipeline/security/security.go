package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bytemomo/sonar/internal/domain"

	"github.com/sirupsen/logrus"
)

// ErrNoProvider is returned on platforms without a security center.
var ErrNoProvider = errors.New("no security center provider on this platform")

// realTimeProtection is the productState bit set while on-access scanning
// is active.
const realTimeProtection = 0x1000

const DefaultTimeout = 10 * time.Second

// Product is one installed protection product as reported by the host.
type Product struct {
	DisplayName  string
	ProductState uint32
}

func (p Product) Enabled() bool { return p.ProductState&realTimeProtection != 0 }

// Querier lists installed protection products.
type Querier interface {
	Query(ctx context.Context) ([]Product, error)
}

type QuerierFunc func(ctx context.Context) ([]Product, error)

func (f QuerierFunc) Query(ctx context.Context) ([]Product, error) { return f(ctx) }

// Inventory folds products into a name → enabled mapping. A repeated name
// keeps the state of its last occurrence.
func Inventory(products []Product) domain.SecurityProducts {
	out := make(domain.SecurityProducts, len(products))
	for _, p := range products {
		out[p.DisplayName] = p.Enabled()
	}
	return out
}

type Probe struct {
	querier Querier
	timeout time.Duration
	log     *logrus.Entry
}

func NewProbe(q Querier, timeout time.Duration, log *logrus.Entry) *Probe {
	if q == nil {
		q = NewSystemQuerier()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Probe{querier: q, timeout: timeout, log: log.WithField("probe", "security")}
}

type queryResult struct {
	products []Product
	err      error
}

// Probe runs the query in isolation: errors, panics and timeouts all end up
// in the result's Err field.
func (p *Probe) Probe(ctx context.Context) domain.SecurityProbeResult {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan queryResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- queryResult{err: fmt.Errorf("query panicked: %v", r)}
			}
		}()
		products, err := p.querier.Query(ctx)
		done <- queryResult{products: products, err: err}
	}()

	var res queryResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = fmt.Errorf("query did not finish: %w", ctx.Err())
	}

	if res.err != nil {
		p.log.WithError(res.err).Warn("Security product query failed")
		return domain.SecurityProbeResult{Err: res.err}
	}

	inv := Inventory(res.products)
	p.log.WithField("product_count", len(inv)).Debug("Security products collected")
	return domain.SecurityProbeResult{Products: inv}
}
