package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/closedigit/bookstore-api/internal/api/metrics"
	"github.com/closedigit/bookstore-api/internal/core/domain"
)

const defaultCacheTTL = 10 * time.Minute

// tombstone marks a deleted book. It reads as a miss and blocks Fill.
var tombstone = []byte("deleted")

// putScript writes ARGV[1] unless the cached entry has a higher version.
// Versions are UpdatedAt in microseconds, which Lua numbers hold exactly.
var putScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur and cur ~= 'deleted' then
  local ok, doc = pcall(cjson.decode, cur)
  if ok and type(doc) == 'table' and tonumber(doc.version) and tonumber(doc.version) > tonumber(ARGV[2]) then
    return 0
  end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// BookCache is a read-through cache of single books backed by Redis.
// Key format: book:<id>
type BookCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBookCache creates a BookCache wrapping the given Redis client.
func NewBookCache(client *redis.Client, ttl time.Duration) *BookCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &BookCache{client: client, ttl: ttl}
}

// cachedBook keeps the price as a decimal string so it survives JSON exactly.
type cachedBook struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	PublishedDate time.Time `json:"published_date"`
	Genre         string    `json:"genre"`
	Price         string    `json:"price"`
	ISBN          string    `json:"isbn"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Version       int64     `json:"version"`
}

func version(b *domain.Book) int64 {
	return b.UpdatedAt.UnixMicro()
}

func encodeBook(b *domain.Book) ([]byte, error) {
	return json.Marshal(cachedBook{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		PublishedDate: b.PublishedDate,
		Genre:         b.Genre,
		Price:         domain.FormatPrice(b.Price),
		ISBN:          b.ISBN,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
		Version:       version(b),
	})
}

func decodeBook(data []byte) (*domain.Book, error) {
	var cb cachedBook
	if err := json.Unmarshal(data, &cb); err != nil {
		return nil, err
	}
	price, ok := domain.ParsePrice(cb.Price)
	if !ok {
		return nil, fmt.Errorf("cached price %q", cb.Price)
	}
	return &domain.Book{
		ID:            cb.ID,
		Title:         cb.Title,
		Author:        cb.Author,
		PublishedDate: cb.PublishedDate.UTC(),
		Genre:         cb.Genre,
		Price:         price,
		ISBN:          cb.ISBN,
		CreatedAt:     cb.CreatedAt.UTC(),
		UpdatedAt:     cb.UpdatedAt.UTC(),
	}, nil
}

// Get reports whether the book is cached and returns it. A tombstone is a miss.
func (c *BookCache) Get(ctx context.Context, id int64) (*domain.Book, bool, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) || (err == nil && bytes.Equal(data, tombstone)) {
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	book, err := decodeBook(data)
	if err != nil {
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	return book, true, nil
}

// Fill stores a book read from the store. An existing entry, including a
// tombstone, is left alone.
func (c *BookCache) Fill(ctx context.Context, book *domain.Book) error {
	data, err := encodeBook(book)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.SetNX(ctx, c.key(book.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache fill: %w", err)
	}
	return nil
}

// Put stores a freshly written book unless a newer version is cached.
func (c *BookCache) Put(ctx context.Context, book *domain.Book) error {
	data, err := encodeBook(book)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	err = putScript.Run(ctx, c.client, []string{c.key(book.ID)}, data, version(book), c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Delete leaves a tombstone for the TTL so a read that started before the
// delete cannot cache the removed book.
func (c *BookCache) Delete(ctx context.Context, id int64) error {
	if err := c.client.Set(ctx, c.key(id), tombstone, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func (c *BookCache) key(id int64) string {
	return "book:" + strconv.FormatInt(id, 10)
}
