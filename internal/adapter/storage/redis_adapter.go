package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lamnm/aims-checkout/internal/core/domain"
	"github.com/lamnm/aims-checkout/internal/port"
)

const (
	cartKeyPrefix  = "cart:"
	stockKeyPrefix = "stock:"
)

// checkStockScript reports whether the stock key can cover the wanted
// quantity. A missing key means the product is not stocked at all.
var checkStockScript = redis.NewScript(`
local stock = redis.call('GET', KEYS[1])
if not stock then
	return 0
end

if tonumber(stock) >= tonumber(ARGV[1]) then
	return 1
end

return 0
`)

type cartEntry struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// RedisCartAdapter stores each session cart as a Redis list so listing
// preserves insertion order, and checks availability against per-product
// stock keys.
type RedisCartAdapter struct {
	client *redis.Client
}

func NewRedisCartAdapter(client *redis.Client) *RedisCartAdapter {
	return &RedisCartAdapter{client: client}
}

// AddItem appends a line to the session cart.
func (r *RedisCartAdapter) AddItem(ctx context.Context, sessionID string, item domain.CartItem) error {
	raw, err := json.Marshal(cartEntry{
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
	})
	if err != nil {
		return fmt.Errorf("encode cart item: %w", err)
	}
	return r.client.RPush(ctx, cartKeyPrefix+sessionID, raw).Err()
}

// RemoveItem drops every line for the product from the session cart.
func (r *RedisCartAdapter) RemoveItem(ctx context.Context, sessionID, productID string) error {
	items, err := r.ListItems(ctx, sessionID)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, cartKeyPrefix+sessionID)
	for _, item := range items {
		if item.ProductID == productID {
			continue
		}
		raw, err := json.Marshal(cartEntry(item))
		if err != nil {
			return fmt.Errorf("encode cart item: %w", err)
		}
		pipe.RPush(ctx, cartKeyPrefix+sessionID, raw)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisCartAdapter) ListItems(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	raws, err := r.client.LRange(ctx, cartKeyPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}

	items := make([]domain.CartItem, 0, len(raws))
	for _, raw := range raws {
		var entry cartEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, fmt.Errorf("decode cart item: %w", err)
		}
		items = append(items, domain.CartItem(entry))
	}
	return items, nil
}

func (r *RedisCartAdapter) TotalAmount(ctx context.Context, sessionID string) (int64, error) {
	items, err := r.ListItems(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total, nil
}

func (r *RedisCartAdapter) EmptyCart(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, cartKeyPrefix+sessionID).Err()
}

func (r *RedisCartAdapter) CheckAvailability(ctx context.Context, sessionID string) error {
	items, err := r.ListItems(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, item := range items {
		key := stockKeyPrefix + item.ProductID
		ok, err := checkStockScript.Run(ctx, r.client, []string{key}, item.Quantity).Int()
		if err != nil {
			return fmt.Errorf("check stock for %s: %w", item.ProductID, err)
		}
		if ok != 1 {
			return fmt.Errorf("%w: product %s", port.ErrItemUnavailable, item.ProductID)
		}
	}
	return nil
}

// SetStock seeds the stock key for a product.
func (r *RedisCartAdapter) SetStock(ctx context.Context, productID string, quantity int) error {
	return r.client.Set(ctx, stockKeyPrefix+productID, quantity, 0).Err()
}
