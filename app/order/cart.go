// Package order turns a cart submitted from the storefront into a priced
// order, a receipt and the notifications that go with it.
package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MalformedOrderError is returned when a cart payload cannot be turned
// into an order.
type MalformedOrderError struct {
	Reason string
	Err    error
}

func (e *MalformedOrderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed order: %s: %v", e.Reason, e.Err)
	}
	return "malformed order: " + e.Reason
}

func (e *MalformedOrderError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err is a MalformedOrderError.
func IsMalformed(err error) bool {
	var mErr *MalformedOrderError
	return errors.As(err, &mErr)
}

// Line is one product in a submitted cart. Name and Price are taken from
// the client as displayed; they are not checked against the catalog.
type Line struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the parsed payload. ClientTotal is the total the storefront
// computed; it is informational only.
type Cart struct {
	Lines       []Line
	ClientTotal decimal.NullDecimal
}

// Wire schema emitted by the storefront:
//
//	{"items":[{"name":"Burger","price":25,"quantity":2}],"total":50}
//
// price, quantity and total may also be numeric strings.
type cartPayload struct {
	Items []cartItem          `json:"items"`
	Total decimal.NullDecimal `json:"total"`
}

type cartItem struct {
	Name     string              `json:"name"`
	Price    decimal.NullDecimal `json:"price"`
	Quantity decimal.NullDecimal `json:"quantity"`
}

var maxQuantity = decimal.NewFromInt(math.MaxInt32)

// ParseCart decodes and validates a cart payload. Lines with a zero
// quantity are dropped; a cart left with no lines is malformed.
func ParseCart(raw []byte) (Cart, error) {
	var payload cartPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Cart{}, &MalformedOrderError{Reason: "payload is not a valid cart", Err: err}
	}

	lines := make([]Line, 0, len(payload.Items))
	for i, item := range payload.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return Cart{}, &MalformedOrderError{Reason: fmt.Sprintf("item %d has no name", i)}
		}
		if !item.Price.Valid {
			return Cart{}, &MalformedOrderError{Reason: fmt.Sprintf("item %q has no price", name)}
		}
		if item.Price.Decimal.IsNegative() {
			return Cart{}, &MalformedOrderError{Reason: fmt.Sprintf("item %q has a negative price", name)}
		}
		if !item.Quantity.Valid {
			return Cart{}, &MalformedOrderError{Reason: fmt.Sprintf("item %q has no quantity", name)}
		}

		qty := item.Quantity.Decimal
		switch {
		case !qty.IsInteger():
			return Cart{}, &MalformedOrderError{Reason: fmt.Sprintf("item %q has a fractional quantity", name)}
		case qty.IsNegative():
			return Cart{}, &MalformedOrderError{Reason: fmt.Sprintf("item %q has a negative quantity", name)}
		case qty.GreaterThan(maxQuantity):
			return Cart{}, &MalformedOrderError{Reason: fmt.Sprintf("item %q quantity is too large", name)}
		case qty.IsZero():
			continue
		}

		lines = append(lines, Line{
			Name:     name,
			Price:    item.Price.Decimal,
			Quantity: int(qty.IntPart()),
		})
	}

	if len(lines) == 0 {
		return Cart{}, &MalformedOrderError{Reason: "cart is empty"}
	}

	return Cart{Lines: lines, ClientTotal: payload.Total}, nil
}
