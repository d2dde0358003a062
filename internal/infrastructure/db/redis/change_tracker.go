package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// touchScript only moves a marker forward, so concurrent writers never
// rewind it.
var touchScript = redis.NewScript(`
local cur = tonumber(redis.call("GET", KEYS[1]) or "0")
local at = tonumber(ARGV[1])
if at > cur then
  redis.call("SET", KEYS[1], ARGV[1])
end
return 1
`)

// ChangeTracker stores the latest mutation time per scope as unix
// milliseconds. Key format: last_update:<scope>
type ChangeTracker struct {
	client *redis.Client
}

func NewChangeTracker(client *redis.Client) *ChangeTracker {
	return &ChangeTracker{client: client}
}

// Touch advances the marker of every scope to at.
func (t *ChangeTracker) Touch(ctx context.Context, at time.Time, scopes ...string) error {
	ms := strconv.FormatInt(at.UnixMilli(), 10)
	for _, scope := range scopes {
		if err := touchScript.Run(ctx, t.client, []string{changeKey(scope)}, ms).Err(); err != nil {
			return fmt.Errorf("touch %s: %w", scope, err)
		}
	}
	return nil
}

// Last returns the marker for scope, zero when none was recorded.
func (t *ChangeTracker) Last(ctx context.Context, scope string) (time.Time, error) {
	ms, err := t.client.Get(ctx, changeKey(scope)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("last update %s: %w", scope, err)
	}
	return time.UnixMilli(ms).UTC(), nil
}

func changeKey(scope string) string {
	return "last_update:" + scope
}
