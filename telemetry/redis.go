package telemetry

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// hashClient is the slice of the redis client used for publishing
type hashClient interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisPublisher mirrors the table into a redis hash named after the table
type RedisPublisher struct {
	client hashClient
	addr   string
}

// NewRedisPublisher creates a publisher for the server at addr
func NewRedisPublisher(addr, password string, db int) *RedisPublisher {
	return &RedisPublisher{
		client: redis.NewClient(&redis.Options{
			Addr:        addr,
			Password:    password,
			DB:          db,
			DialTimeout: 2 * time.Second,
		}),
		addr: addr,
	}
}

// Name implements Publisher and service.Service
func (p *RedisPublisher) Name() string {
	return "redis"
}

// Dependencies implements service.Service
func (p *RedisPublisher) Dependencies() []string {
	return nil
}

// Start checks connectivity; an unreachable server is logged, not fatal
func (p *RedisPublisher) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := p.client.Ping(ctx).Err(); err != nil {
		log.Printf("redis: %s unreachable: %v", p.addr, err)
	}
	return nil
}

// Stop implements service.Service
func (p *RedisPublisher) Stop() error {
	return p.client.Close()
}

// Publish writes every entry as one HSET
func (p *RedisPublisher) Publish(ctx context.Context, table string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	values := make([]interface{}, 0, 2*len(entries))
	for _, e := range entries {
		values = append(values, e.Key, e.Value)
	}
	return p.client.HSet(ctx, table, values...).Err()
}
