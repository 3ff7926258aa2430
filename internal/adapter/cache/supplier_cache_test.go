package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemorySupplierCache(t *testing.T) {
	c := NewMemorySupplierCache()

	_, ok := c.Get("10")
	assert.False(t, ok)

	c.Set("10", "Acme")
	name, ok := c.Get("10")
	assert.True(t, ok)
	assert.Equal(t, "Acme", name)

	c.Set("10", "Globex")
	name, _ = c.Get("10")
	assert.Equal(t, "Globex", name)
}
