// Package coordination leases an instance ID from a shared Redis pool at
// process startup, so operators running a fleet of idgend processes don't
// have to hand-assign distinct instance IDs themselves.
//
// This automates picking a number out of the operator's own, already
// statically-sized instance ID space (bounded by instance_id_bits); it
// never coordinates the act of allocating identifiers between instances,
// so it does not reintroduce the cross-instance coordination this
// system's core explicitly excludes — an instance that never contacts
// Redis again after leasing still allocates correctly and independently.
//
// Grounded on the teacher repository's examples/distributed/redis/main.go,
// which leases a worker ID from a Redis-backed pool via SETNX with a TTL
// and a background renewal goroutine; this package keeps that shape.
package coordination

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	leaseTTL      = 30 * time.Second
	renewInterval = 10 * time.Second
)

// Leaser leases one instance ID out of a pool of size poolSize (instance
// IDs 0..poolSize-1) using Redis SETNX keys as the locking primitive.
type Leaser struct {
	client     *redis.Client
	instanceID uint64
	key        string
	stop       chan struct{}
}

// NewLeaser connects to the Redis instance at addr. It does not lease
// anything yet; call Lease to do that.
func NewLeaser(addr string) *Leaser {
	return &Leaser{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		stop:   make(chan struct{}),
	}
}

// Lease claims the first available instance ID in [0, poolSize), renewing
// its lease in the background until Release is called or ctx is
// cancelled. If every ID in the pool is currently leased, Lease fails: the
// caller should treat this as a fatal startup error, per SPEC_FULL.md
// §4.13 — there is no degraded mode that still guarantees uniqueness.
func (l *Leaser) Lease(ctx context.Context, poolSize uint64) (uint64, error) {
	for id := uint64(0); id < poolSize; id++ {
		key := fmt.Sprintf("idgen:instance:%d", id)
		acquired, err := l.client.SetNX(ctx, key, "claimed", leaseTTL).Result()
		if err != nil {
			return 0, fmt.Errorf("coordination: leasing instance %d: %w", id, err)
		}
		if acquired {
			l.instanceID = id
			l.key = key
			go l.renew(ctx)
			return id, nil
		}
	}
	return 0, fmt.Errorf("coordination: no available instance ids in pool of %d", poolSize)
}

func (l *Leaser) renew(ctx context.Context) {
	ticker := time.NewTicker(renewInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := l.client.Expire(ctx, l.key, leaseTTL).Err(); err != nil {
				return
			}
		case <-l.stop:
			l.client.Del(ctx, l.key)
			return
		case <-ctx.Done():
			return
		}
	}
}

// Release gives up the leased instance ID and closes the Redis
// connection.
func (l *Leaser) Release(ctx context.Context) error {
	close(l.stop)
	if l.key == "" {
		return l.client.Close()
	}
	if err := l.client.Del(ctx, l.key).Err(); err != nil {
		l.client.Close()
		return fmt.Errorf("coordination: releasing instance %d: %w", l.instanceID, err)
	}
	return l.client.Close()
}
