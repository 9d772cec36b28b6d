//go:build !windows

package security

import "context"

type unsupportedQuerier struct{}

func NewSystemQuerier() Querier { return unsupportedQuerier{} }

func (unsupportedQuerier) Query(context.Context) ([]Product, error) { return nil, ErrNoProvider }
