// Package cart holds the client-local cart collection and the reconciliation
// rules that keep it free of duplicate variants.
//
// A Cart is a value: every operation takes the current lines and returns the
// next Cart, so callers decide when to persist. Two lines never share a Key
// and no line ever has Quantity below 1.
package cart

import (
	"fmt"
	"slices"
)

// Line is one product variant in the cart. JSON names match the persisted
// snapshot format.
type Line struct {
	Key       string  `json:"cartId"`
	ProductID string  `json:"id"`
	Name      string  `json:"name,omitempty"`
	Image     string  `json:"image,omitempty"`
	Color     string  `json:"color"`
	Size      string  `json:"size"`
	UnitPrice float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	// Selected is nil until the user toggles it; nil counts as included.
	Selected *bool `json:"selected,omitempty"`
}

// Included reports whether the line counts toward the checkout subtotal.
func (l Line) Included() bool {
	return l.Selected == nil || *l.Selected
}

// Key derives the composite identity of a variant.
func Key(productID, color, size string) string {
	return fmt.Sprintf("%s-%s-%s", productID, color, size)
}

// Item describes a variant being added.
type Item struct {
	ProductID string
	Name      string
	Image     string
	Color     string
	Size      string
	UnitPrice float64
}

type Cart struct {
	Lines []Line
}

func New(lines []Line) Cart {
	return Cart{Lines: slices.Clone(lines)}
}

func (c Cart) Len() int { return len(c.Lines) }

func (c Cart) Find(key string) (Line, bool) {
	if i := c.index(key); i >= 0 {
		return c.Lines[i], true
	}
	return Line{}, false
}

func (c Cart) index(key string) int {
	return slices.IndexFunc(c.Lines, func(l Line) bool { return l.Key == key })
}

func (c Cart) clone() Cart {
	return Cart{Lines: slices.Clone(c.Lines)}
}

// AddOrIncrement bumps the quantity of an existing variant or appends a new
// line with quantity 1.
func (c Cart) AddOrIncrement(it Item) (Cart, Line) {
	next := c.clone()
	key := Key(it.ProductID, it.Color, it.Size)
	if i := next.index(key); i >= 0 {
		next.Lines[i].Quantity++
		return next, next.Lines[i]
	}
	line := Line{
		Key:       key,
		ProductID: it.ProductID,
		Name:      it.Name,
		Image:     it.Image,
		Color:     it.Color,
		Size:      it.Size,
		UnitPrice: it.UnitPrice,
		Quantity:  1,
	}
	next.Lines = append(next.Lines, line)
	return next, line
}

// SetQuantity applies delta and clamps at 1. Unknown keys are ignored.
func (c Cart) SetQuantity(key string, delta int) Cart {
	i := c.index(key)
	if i < 0 {
		return c
	}
	next := c.clone()
	next.Lines[i].Quantity = max(1, next.Lines[i].Quantity+delta)
	return next
}

func (c Cart) Remove(key string) Cart {
	i := c.index(key)
	if i < 0 {
		return c
	}
	next := c.clone()
	next.Lines = slices.Delete(next.Lines, i, i+1)
	return next
}

func (c Cart) ClearAll() Cart {
	return Cart{Lines: []Line{}}
}

func (c Cart) SetSelected(key string, selected bool) Cart {
	i := c.index(key)
	if i < 0 {
		return c
	}
	next := c.clone()
	next.Lines[i].Selected = boolPtr(selected)
	return next
}

func (c Cart) SetSelectedAll(selected bool) Cart {
	next := c.clone()
	for i := range next.Lines {
		next.Lines[i].Selected = boolPtr(selected)
	}
	return next
}

// EditVariant moves a line to a new color/size. When another line already
// holds the target variant it absorbs the edited line's quantity and the
// edited line is dropped. Empty color or size leaves the cart unchanged.
// The returned bool is false when key is unknown.
func (c Cart) EditVariant(key, color, size string) (Cart, Line, bool) {
	i := c.index(key)
	if i < 0 {
		return c, Line{}, false
	}
	if color == "" || size == "" {
		return c, c.Lines[i], true
	}
	current := c.Lines[i]
	newKey := Key(current.ProductID, color, size)
	if newKey == key {
		return c.clone(), current, true
	}

	next := c.clone()
	if j := next.index(newKey); j >= 0 {
		next.Lines[j].Quantity += current.Quantity
		merged := next.Lines[j]
		next.Lines = slices.Delete(next.Lines, i, i+1)
		return next, merged, true
	}
	next.Lines[i].Color = color
	next.Lines[i].Size = size
	next.Lines[i].Key = newKey
	return next, next.Lines[i], true
}

// Subtotal sums price times quantity over included lines.
func (c Cart) Subtotal() float64 {
	var total float64
	for _, l := range c.Lines {
		if l.Included() {
			total += l.UnitPrice * float64(l.Quantity)
		}
	}
	return total
}

// ItemCount is the number of units across all lines.
func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Normalize repairs a cart loaded from an untrusted snapshot: keys are
// recomputed, duplicate variants merged in first-seen order and quantities
// clamped to 1.
func Normalize(lines []Line) Cart {
	out := Cart{Lines: make([]Line, 0, len(lines))}
	for _, l := range lines {
		l.Key = Key(l.ProductID, l.Color, l.Size)
		l.Quantity = max(1, l.Quantity)
		if j := out.index(l.Key); j >= 0 {
			out.Lines[j].Quantity += l.Quantity
			continue
		}
		out.Lines = append(out.Lines, l)
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
