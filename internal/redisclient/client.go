package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rentalhub/internal/models"

	"github.com/go-redis/redis/v8"
)

const catalogTTL = 5 * time.Minute

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewClientWithRedis wraps an existing redis client (used by tests).
func NewClientWithRedis(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetCachedProduct returns a cached product, or nil on miss. Cache
// errors degrade to a miss so the DB read path still serves.
func (c *Client) GetCachedProduct(ctx context.Context, productID int64) (*models.Product, error) {
	data, err := c.rdb.Get(ctx, productKey(productID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CacheProduct stores a product snapshot with TTL.
func (c *Client) CacheProduct(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(product.ID), data, catalogTTL).Err()
}

// GetCachedProductList returns the cached catalog listing, or nil on miss.
func (c *Client) GetCachedProductList(ctx context.Context) ([]models.Product, error) {
	data, err := c.rdb.Get(ctx, "products:all").Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CacheProductList stores the catalog listing with TTL.
func (c *Client) CacheProductList(ctx context.Context, products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, "products:all", data, catalogTTL).Err()
}

// InvalidateProducts drops cached entries after a stock mutation. Stale
// reads are bounded by the TTL even if this fails.
func (c *Client) InvalidateProducts(ctx context.Context, productIDs ...int64) error {
	keys := make([]string, 0, len(productIDs)+1)
	keys = append(keys, "products:all")
	for _, id := range productIDs {
		keys = append(keys, productKey(id))
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// SetIdempotencyKey records the payment id produced for a checkout
// idempotency key.
func (c *Client) SetIdempotencyKey(ctx context.Context, key string, paymentID int64, ttl time.Duration) error {
	return c.rdb.SetNX(ctx, "idempotency:"+key, paymentID, ttl).Err()
}

// GetIdempotencyKey returns the payment id stored for a checkout key,
// or 0 if the key is unseen.
func (c *Client) GetIdempotencyKey(ctx context.Context, key string) (int64, error) {
	id, err := c.rdb.Get(ctx, "idempotency:"+key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return id, err
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}
