//go:build windows

package security

import (
	"context"
	"fmt"

	"github.com/StackExchange/wmi"
)

const securityCenterNamespace = `root\SecurityCenter2`

// AntiVirusProduct mirrors the WMI class of the same name; field names are
// matched against its properties.
type AntiVirusProduct struct {
	DisplayName  string
	ProductState uint32
}

type wmiQuerier struct{}

func NewSystemQuerier() Querier { return wmiQuerier{} }

// Query is not interruptible once WMI is called; the probe's timeout
// abandons it instead.
func (wmiQuerier) Query(_ context.Context) ([]Product, error) {
	var dst []AntiVirusProduct
	q := wmi.CreateQuery(&dst, "")
	if err := wmi.QueryNamespace(q, &dst, securityCenterNamespace); err != nil {
		return nil, fmt.Errorf("failed to query %s for antivirus products: %w", securityCenterNamespace, err)
	}

	out := make([]Product, len(dst))
	for i, v := range dst {
		out[i] = Product{DisplayName: v.DisplayName, ProductState: v.ProductState}
	}
	return out, nil
}
