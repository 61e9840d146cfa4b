package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

func TestCart_AddKeepsOrderAndDedups(t *testing.T) {
	var c Cart
	assert.True(t, c.Add(types.CartItem{BookID: 3, Title: "C"}))
	assert.True(t, c.Add(types.CartItem{BookID: 1, Title: "A"}))
	assert.False(t, c.Add(types.CartItem{BookID: 3, Title: "C again"}))

	assert.Equal(t, []int{3, 1}, c.BookIDs())
	assert.Equal(t, "C", c.Items()[0].Title, "re-adding must not replace the entry")
	assert.Equal(t, 2, c.Len())
}

func TestCart_Remove(t *testing.T) {
	var c Cart
	c.Add(types.CartItem{BookID: 1})
	c.Add(types.CartItem{BookID: 2})
	c.Add(types.CartItem{BookID: 3})

	assert.False(t, c.Remove(9), "absent id is a no-op")
	assert.Equal(t, []int{1, 2, 3}, c.BookIDs())

	assert.True(t, c.Remove(2))
	assert.Equal(t, []int{1, 3}, c.BookIDs())
	assert.False(t, c.Contains(2))
}

func TestCart_ItemsIsACopy(t *testing.T) {
	var c Cart
	c.Add(types.CartItem{BookID: 1, Title: "A"})
	items := c.Items()
	items[0].Title = "changed"
	assert.Equal(t, "A", c.Items()[0].Title)
}

// TestCartProperties checks the cart against a model: a list that only grows
// with unseen IDs and shrinks by removing the one matching entry.
func TestCartProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("property test")
	}
	rapid.Check(t, func(rt *rapid.T) {
		var c Cart
		var model []int
		id := rapid.IntRange(1, 8)

		rt.Repeat(map[string]func(*rapid.T){
			"add": func(rt *rapid.T) {
				n := id.Draw(rt, "add")
				seen := false
				for _, m := range model {
					seen = seen || m == n
				}
				if got := c.Add(types.CartItem{BookID: n}); got == seen {
					rt.Fatalf("Add(%d) = %v with model %v", n, got, model)
				}
				if !seen {
					model = append(model, n)
				}
			},
			"remove": func(rt *rapid.T) {
				n := id.Draw(rt, "remove")
				idx := -1
				for i, m := range model {
					if m == n {
						idx = i
					}
				}
				if got := c.Remove(n); got != (idx >= 0) {
					rt.Fatalf("Remove(%d) = %v with model %v", n, got, model)
				}
				if idx >= 0 {
					model = append(model[:idx:idx], model[idx+1:]...)
				}
			},
			"": func(rt *rapid.T) {
				got := c.BookIDs()
				if len(got) != len(model) {
					rt.Fatalf("cart %v, model %v", got, model)
				}
				for i := range got {
					if got[i] != model[i] {
						rt.Fatalf("cart %v, model %v", got, model)
					}
				}
			},
		})
	})
}
