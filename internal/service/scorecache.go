package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"anoa.com/wikigradebook/internal/dto"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const scoreCacheTTL = 5 * time.Minute

// ScoreCache keeps computed score reports in redis. Evaluation and
// adjustment writes invalidate the affected student; assignment and group
// writes affect every student, so those bump a global version that is part
// of every key. A nil redis client degrades to a no-op, same as the rest of
// the app.
type ScoreCache struct {
	rdb *redis.Client
}

func NewScoreCache(rdb *redis.Client) *ScoreCache {
	return &ScoreCache{rdb: rdb}
}

func (c *ScoreCache) key(ctx context.Context, userID uuid.UUID) string {
	version, err := c.rdb.Get(ctx, "scores:version").Int64()
	if err != nil {
		version = 0
	}
	return fmt.Sprintf("scores:v%d:user:%s", version, userID.String())
}

func (c *ScoreCache) Get(ctx context.Context, userID uuid.UUID) (*dto.ScoreReport, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	payload, err := c.rdb.Get(ctx, c.key(ctx, userID)).Bytes()
	if err != nil {
		return nil, false
	}

	var report dto.ScoreReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false
	}
	return &report, true
}

func (c *ScoreCache) Set(ctx context.Context, userID uuid.UUID, report *dto.ScoreReport) {
	if c == nil || c.rdb == nil {
		return
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, c.key(ctx, userID), payload, scoreCacheTTL)
}

// InvalidateUser drops one student's cached report after an evaluation or
// adjustment write.
func (c *ScoreCache) InvalidateUser(ctx context.Context, userID uuid.UUID) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, c.key(ctx, userID))
}

// BumpVersion invalidates every cached report after an assignment or group
// write. Old keys simply expire.
func (c *ScoreCache) BumpVersion(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Incr(ctx, "scores:version")
}
