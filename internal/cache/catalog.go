package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"time"

	"figurinha-studio/internal/domain"
	"github.com/redis/go-redis/v9"
)

// PacksKey holds the full pack listing.
const PacksKey = "catalog:packs"

// commands is the subset of the go-redis client used by the catalog cache.
type commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Catalog caches the pack listing in Redis. Failures are logged and treated as misses.
type Catalog struct {
	rdb    commands
	ttl    time.Duration
	logger *log.Logger
}

func NewCatalog(rdb commands, ttl time.Duration, logger *log.Logger) *Catalog {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Catalog{rdb: rdb, ttl: ttl, logger: logger}
}

// cachedPack keeps the fields that are hidden from API responses.
type cachedPack struct {
	domain.Pack
	StickerFilesURL *string `json:"stickerFilesUrl,omitempty"`
	PaymentLink     *string `json:"paymentLink,omitempty"`
}

func (c *Catalog) Packs(ctx context.Context) ([]domain.Pack, bool) {
	raw, err := c.rdb.Get(ctx, PacksKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Printf("catalog cache: get error=%v", err)
		}
		return nil, false
	}
	var cached []cachedPack
	if err := json.Unmarshal(raw, &cached); err != nil {
		c.logger.Printf("catalog cache: decode error=%v", err)
		return nil, false
	}
	packs := make([]domain.Pack, 0, len(cached))
	for _, cp := range cached {
		p := cp.Pack
		p.StickerFilesURL = cp.StickerFilesURL
		p.PaymentLink = cp.PaymentLink
		packs = append(packs, p)
	}
	return packs, true
}

func (c *Catalog) StorePacks(ctx context.Context, packs []domain.Pack) {
	cached := make([]cachedPack, 0, len(packs))
	for _, p := range packs {
		cached = append(cached, cachedPack{Pack: p, StickerFilesURL: p.StickerFilesURL, PaymentLink: p.PaymentLink})
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		c.logger.Printf("catalog cache: encode error=%v", err)
		return
	}
	if err := c.rdb.Set(ctx, PacksKey, raw, c.ttl).Err(); err != nil {
		c.logger.Printf("catalog cache: set error=%v", err)
	}
}

func (c *Catalog) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, PacksKey).Err(); err != nil {
		c.logger.Printf("catalog cache: invalidate error=%v", err)
	}
}

// Nop is used when no Redis address is configured.
type Nop struct{}

func (Nop) Packs(context.Context) ([]domain.Pack, bool) { return nil, false }
func (Nop) StorePacks(context.Context, []domain.Pack)     {}
func (Nop) Invalidate(context.Context)                    {}
