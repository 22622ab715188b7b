// Package cache is an injected read-through cache for the product catalog.
// The order placement core never touches it; handlers that mutate products
// or stock call the invalidation methods explicitly.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erekle1/testEcommerceOrderManagementSystem/internal/models"
	"github.com/redis/go-redis/v9"
)

type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProductCache returns nil when client is nil; a nil *ProductCache is a
// valid always-miss cache, so callers need no configuration branching.
func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	if client == nil {
		return nil
	}
	return &ProductCache{client: client, ttl: ttl}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (c *ProductCache) GetProduct(ctx context.Context, id int64) (*models.Product, bool) {
	if c == nil {
		return nil, false
	}

	val, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		return nil, false
	}

	var product models.Product
	if err := json.Unmarshal(val, &product); err != nil {
		return nil, false
	}

	return &product, true
}

func (c *ProductCache) SetProduct(ctx context.Context, product *models.Product) {
	if c == nil {
		return
	}

	data, err := json.Marshal(product)
	if err != nil {
		return
	}

	c.client.Set(ctx, productKey(product.ID), data, c.ttl)
}

func (c *ProductCache) InvalidateProduct(ctx context.Context, id int64) {
	if c == nil {
		return
	}
	c.client.Del(ctx, productKey(id))
}

// List entries are keyed by a query signature plus a generation counter.
// Bumping the generation orphans every cached list at once, so writes never
// have to enumerate keys.
const listGenerationKey = "products:lists:generation"

func (c *ProductCache) listKey(ctx context.Context, signature string) string {
	gen, err := c.client.Get(ctx, listGenerationKey).Int64()
	if err != nil {
		gen = 0
	}
	return fmt.Sprintf("products:lists:%d:%s", gen, signature)
}

func (c *ProductCache) GetListJSON(ctx context.Context, signature string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}

	val, err := c.client.Get(ctx, c.listKey(ctx, signature)).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *ProductCache) SetListJSON(ctx context.Context, signature string, data []byte) {
	if c == nil {
		return
	}
	c.client.Set(ctx, c.listKey(ctx, signature), data, c.ttl)
}

func (c *ProductCache) InvalidateLists(ctx context.Context) {
	if c == nil {
		return
	}
	c.client.Incr(ctx, listGenerationKey)
}

// ListSignature builds a stable key for a product list query.
func ListSignature(filter interface{}, page, pageSize int) string {
	data, err := json.Marshal(filter)
	if err != nil {
		data = []byte("{}")
	}
	return fmt.Sprintf("%s:%d:%d", data, page, pageSize)
}
