package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Queue carries notification ids from the API to the delivery worker.
type Queue interface {
	Enqueue(ctx context.Context, id string, priority Priority) error
	ClaimBlocking(ctx context.Context, timeout time.Duration) (string, error)
	Ack(ctx context.Context, id string) error
	RequeueStale(ctx context.Context, olderThan time.Duration, maxPerLane int64) (int64, error)
}

type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

type Lane struct {
	QueueKey      string
	ProcessingKey string
}

// LanesFor derives the low/normal/high lane keys from a key prefix.
func LanesFor(prefix string) (low, normal, high Lane) {
	mk := func(name string) Lane {
		return Lane{
			QueueKey:      fmt.Sprintf("%s:queue:%s", prefix, name),
			ProcessingKey: fmt.Sprintf("%s:processing:%s", prefix, name),
		}
	}
	return mk("low"), mk("normal"), mk("high")
}

// redisPriorityQueue is a reliable queue with priorities on Redis lists.
// Claim: RPOPLPUSH/BRPOPLPUSH lane.queue -> lane.processing, claim time in claimedAtKey
// Ack:   LREM from the processing list recorded in processingMapKey
type redisPriorityQueue struct {
	rdb              *redis.Client
	processingMapKey string
	claimedAtKey     string

	low    Lane
	normal Lane
	high   Lane
}

func NewRedisPriorityQueue(rdb *redis.Client, prefix string) Queue {
	low, normal, high := LanesFor(prefix)
	return &redisPriorityQueue{
		rdb:              rdb,
		processingMapKey: prefix + ":processing:map",
		claimedAtKey:     prefix + ":processing:claimed_at",
		low:              low,
		normal:           normal,
		high:             high,
	}
}

func (q *redisPriorityQueue) lane(p Priority) Lane {
	switch {
	case p >= PriorityHigh:
		return q.high
	case p == PriorityNormal:
		return q.normal
	default:
		return q.low
	}
}

func (q *redisPriorityQueue) lanes() []Lane {
	return []Lane{q.high, q.normal, q.low}
}

func (q *redisPriorityQueue) Enqueue(ctx context.Context, id string, priority Priority) error {
	return q.rdb.LPush(ctx, q.lane(priority).QueueKey, id).Err()
}

// blockSlot is the BRPOPLPUSH wait; Redis blocks in whole seconds.
const blockSlot = time.Second

// ClaimBlocking sweeps high -> normal -> low without blocking, then waits on the
// high lane for one slot and sweeps again. Lower lanes are therefore picked up
// within a slot, and the call may overrun a sub-second timeout by up to one slot.
// timeout <= 0 waits forever.
func (q *redisPriorityQueue) ClaimBlocking(ctx context.Context, timeout time.Duration) (string, error) {
	forever := timeout <= 0
	deadline := time.Now().Add(timeout)

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		for _, ln := range q.lanes() {
			id, err := q.rdb.RPopLPush(ctx, ln.QueueKey, ln.ProcessingKey).Result()
			if err == nil {
				return q.markClaimed(ctx, id, ln)
			}
			if !errors.Is(err, redis.Nil) {
				return "", err
			}
		}

		if !forever && !time.Now().Before(deadline) {
			return "", redis.Nil
		}

		id, err := q.rdb.BRPopLPush(ctx, q.high.QueueKey, q.high.ProcessingKey, blockSlot).Result()
		if err == nil {
			return q.markClaimed(ctx, id, q.high)
		}
		if !errors.Is(err, redis.Nil) {
			return "", err
		}
	}
}

func (q *redisPriorityQueue) markClaimed(ctx context.Context, id string, ln Lane) (string, error) {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	// Ack needs to know which processing list holds the id, the reaper needs the claim time.
	_, err := q.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, q.processingMapKey, id, ln.ProcessingKey)
		p.HSet(ctx, q.claimedAtKey, id, now)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (q *redisPriorityQueue) Ack(ctx context.Context, id string) error {
	processingKey, err := q.rdb.HGet(ctx, q.processingMapKey, id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// mapping lost (manual cleanup): try every processing list
			for _, ln := range q.lanes() {
				_ = q.rdb.LRem(ctx, ln.ProcessingKey, 1, id).Err()
			}
			_ = q.rdb.HDel(ctx, q.claimedAtKey, id).Err()
			return nil
		}
		return err
	}

	if err := q.rdb.LRem(ctx, processingKey, 1, id).Err(); err != nil {
		return err
	}
	_ = q.rdb.HDel(ctx, q.processingMapKey, id).Err()
	_ = q.rdb.HDel(ctx, q.claimedAtKey, id).Err()
	return nil
}

// requeueScript moves one id from processing back to its queue unless it was
// acked in the meantime.
// KEYS: processing, queue, processing map, claimed_at. ARGV: id.
var requeueScript = redis.NewScript(`
if redis.call('LREM', KEYS[1], 1, ARGV[1]) == 1 then
	redis.call('LPUSH', KEYS[2], ARGV[1])
	redis.call('HDEL', KEYS[3], ARGV[1])
	redis.call('HDEL', KEYS[4], ARGV[1])
	return 1
end
return 0
`)

// RequeueStale moves ids claimed longer than olderThan ago back to their lane
// queue, oldest first. Fresh claims, including ids still waiting for a free
// worker, stay put. An id found without a claim time (claimer died between the
// pop and the bookkeeping) gets one now and is requeued on a later pass.
func (q *redisPriorityQueue) RequeueStale(ctx context.Context, olderThan time.Duration, maxPerLane int64) (int64, error) {
	var moved int64
	now := time.Now()

	for _, ln := range q.lanes() {
		// BRPOPLPUSH pushes to the head, so the oldest claims sit at the tail.
		ids, err := q.rdb.LRange(ctx, ln.ProcessingKey, -maxPerLane, -1).Result()
		if err != nil {
			return moved, err
		}
		if len(ids) == 0 {
			continue
		}
		stamps, err := q.rdb.HMGet(ctx, q.claimedAtKey, ids...).Result()
		if err != nil {
			return moved, err
		}

		for i, id := range ids {
			raw, _ := stamps[i].(string)
			ms, perr := strconv.ParseInt(raw, 10, 64)
			if raw == "" || perr != nil {
				if err := q.rdb.HSetNX(ctx, q.claimedAtKey, id, strconv.FormatInt(now.UnixMilli(), 10)).Err(); err != nil {
					return moved, err
				}
				continue
			}
			if now.Sub(time.UnixMilli(ms)) < olderThan {
				continue
			}

			n, err := requeueScript.Run(ctx, q.rdb,
				[]string{ln.ProcessingKey, ln.QueueKey, q.processingMapKey, q.claimedAtKey}, id).Int64()
			if err != nil {
				return moved, err
			}
			moved += n
		}
	}
	return moved, nil
}
