package cart

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tee(color, size string) Item {
	return Item{ProductID: "p1", Name: "Classic Tee", Color: color, Size: size, UnitPrice: 100}
}

func TestAddOrIncrementCreatesThenIncrements(t *testing.T) {
	c := New(nil)
	c, line := c.AddOrIncrement(tee("White", "M"))
	require.Equal(t, "p1-White-M", line.Key)
	require.Equal(t, 1, line.Quantity)

	c, line = c.AddOrIncrement(tee("White", "M"))
	require.Equal(t, 2, line.Quantity)
	require.Equal(t, 1, c.Len())
}

func TestAddOrIncrementDoesNotMutateInput(t *testing.T) {
	start, _ := New(nil).AddOrIncrement(tee("White", "M"))
	_, _ = start.AddOrIncrement(tee("White", "M"))
	assert.Equal(t, 1, start.Lines[0].Quantity)
}

func TestNoDuplicateKeysUnderRandomOps(t *testing.T) {
	colors := []string{"White", "Black", "Navy"}
	sizes := []string{"S", "M", "L"}
	rng := rand.New(rand.NewSource(7))

	c := New(nil)
	for i := 0; i < 500; i++ {
		color := colors[rng.Intn(len(colors))]
		size := sizes[rng.Intn(len(sizes))]
		if rng.Intn(2) == 0 || c.Len() == 0 {
			c, _ = c.AddOrIncrement(tee(color, size))
			continue
		}
		target := c.Lines[rng.Intn(c.Len())].Key
		c, _, _ = c.EditVariant(target, color, size)
	}

	seen := map[string]bool{}
	for _, l := range c.Lines {
		variant := l.ProductID + "|" + l.Color + "|" + l.Size
		require.False(t, seen[variant], "duplicate variant %s", variant)
		seen[variant] = true
		require.Equal(t, Key(l.ProductID, l.Color, l.Size), l.Key)
	}
}

func TestSetQuantityClampsAtOne(t *testing.T) {
	c, _ := New(nil).AddOrIncrement(tee("Black", "L"))
	key := c.Lines[0].Key

	for _, delta := range []int{-1, -5, -1000, 0} {
		next := c.SetQuantity(key, delta)
		assert.Equal(t, 1, next.Lines[0].Quantity, "delta %d", delta)
	}
	assert.Equal(t, 4, c.SetQuantity(key, 3).Lines[0].Quantity)

	// Unknown keys leave the cart untouched.
	assert.Empty(t, cmp.Diff(c, c.SetQuantity("missing", 10)))
}

func TestEditVariantMergesIntoExistingLine(t *testing.T) {
	c := New([]Line{
		{Key: "p1-White-M", ProductID: "p1", Color: "White", Size: "M", UnitPrice: 100, Quantity: 2},
		{Key: "p1-Black-L", ProductID: "p1", Color: "Black", Size: "L", UnitPrice: 100, Quantity: 3},
	})

	next, merged, ok := c.EditVariant("p1-White-M", "Black", "L")
	require.True(t, ok)
	require.Equal(t, 1, next.Len())
	assert.Equal(t, "p1-Black-L", merged.Key)
	assert.Equal(t, 5, merged.Quantity)
	_, stillThere := next.Find("p1-White-M")
	assert.False(t, stillThere)
}

func TestEditVariantInPlace(t *testing.T) {
	c := New([]Line{{Key: "p1-White-M", ProductID: "p1", Color: "White", Size: "M", UnitPrice: 100, Quantity: 2}})

	next, line, ok := c.EditVariant("p1-White-M", "Navy", "XL")
	require.True(t, ok)
	require.Equal(t, 1, next.Len())
	assert.Equal(t, Line{Key: "p1-Navy-XL", ProductID: "p1", Color: "Navy", Size: "XL", UnitPrice: 100, Quantity: 2}, line)
}

func TestEditVariantSameKeyAndEmptyFields(t *testing.T) {
	c := New([]Line{{Key: "p1-White-M", ProductID: "p1", Color: "White", Size: "M", Quantity: 2}})

	next, _, ok := c.EditVariant("p1-White-M", "White", "M")
	require.True(t, ok)
	assert.Empty(t, cmp.Diff(c, next))

	next, _, ok = c.EditVariant("p1-White-M", "", "M")
	require.True(t, ok)
	assert.Empty(t, cmp.Diff(c, next))

	_, _, ok = c.EditVariant("nope", "Black", "S")
	assert.False(t, ok)
}

func TestSubtotalExcludesDeselectedLines(t *testing.T) {
	yes, no := true, false
	c := New([]Line{
		{Key: "a", UnitPrice: 100, Quantity: 2, Selected: &yes},
		{Key: "b", UnitPrice: 50, Quantity: 1, Selected: &no},
	})
	assert.Equal(t, 200.0, c.Subtotal())

	// Lines never toggled count as selected.
	c = New([]Line{{Key: "a", UnitPrice: 10, Quantity: 3}})
	assert.Equal(t, 30.0, c.Subtotal())
}

func TestSelection(t *testing.T) {
	c := New([]Line{{Key: "a", UnitPrice: 10, Quantity: 1}, {Key: "b", UnitPrice: 5, Quantity: 2}})

	c = c.SetSelected("a", false)
	assert.Equal(t, 10.0, c.Subtotal())

	c = c.SetSelectedAll(false)
	assert.Equal(t, 0.0, c.Subtotal())

	c = c.SetSelectedAll(true)
	assert.Equal(t, 20.0, c.Subtotal())
	assert.Equal(t, 3, c.ItemCount())
}

func TestRemoveAbsentKeyIsNoop(t *testing.T) {
	c := New([]Line{{Key: "a", Quantity: 1}})
	next := c.Remove("missing")
	assert.Empty(t, cmp.Diff(c, next))

	next = c.Remove("a")
	assert.Equal(t, 0, next.Len())
	assert.Equal(t, 1, c.Len())
}

func TestClearAll(t *testing.T) {
	c := New([]Line{{Key: "a", Quantity: 1}, {Key: "b", Quantity: 4}})
	assert.Equal(t, 0, c.ClearAll().Len())
}

func TestNormalizeMergesDuplicatesAndClamps(t *testing.T) {
	got := Normalize([]Line{
		{Key: "stale", ProductID: "p1", Color: "Red", Size: "S", Quantity: 0},
		{ProductID: "p2", Color: "Blue", Size: "M", Quantity: 2},
		{ProductID: "p1", Color: "Red", Size: "S", Quantity: 3},
	})
	want := Cart{Lines: []Line{
		{Key: "p1-Red-S", ProductID: "p1", Color: "Red", Size: "S", Quantity: 4},
		{Key: "p2-Blue-M", ProductID: "p2", Color: "Blue", Size: "M", Quantity: 2},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Normalize mismatch (-want +got):\n%s", diff)
	}
}
