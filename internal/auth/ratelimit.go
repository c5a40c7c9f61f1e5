package auth

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/org-admin/pkg/util/errorutil"
)

const loginLimiterPrefix = "org_admin_login"

// MsgTooManyAttempts is shown when the login limiter trips.
const MsgTooManyAttempts = "Too many login attempts. Please try again later."

// LoginLimiter throttles credential submissions per client IP.
type LoginLimiter struct {
	limiter *limiter.Limiter
	logger  *zap.Logger
}

// NewLoginLimiter builds a limiter from a formatted rate such as "10-M".
// It stores counters in redis when client is non-nil, in memory otherwise.
func NewLoginLimiter(rate string, client *redis.Client, logger *zap.Logger) (*LoginLimiter, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}

	var store limiter.Store
	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: loginLimiterPrefix})
		if err != nil {
			logger.Warn("redis limiter store unavailable, falling back to memory", zap.Error(err))
			store = nil
		}
	}
	if store == nil {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: loginLimiterPrefix})
	}

	return &LoginLimiter{limiter: limiter.New(store, parsed), logger: logger}, nil
}

// Handle counts the attempt and rejects it once the rate is exceeded.
// Store failures let the request through.
func (l *LoginLimiter) Handle(c *fiber.Ctx) error {
	ctx, err := l.limiter.Get(c.UserContext(), c.IP())
	if err != nil {
		l.logger.Warn("login limiter unavailable", zap.Error(err))
		return c.Next()
	}

	c.Set("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
	c.Set("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(ctx.Reset, 10))

	if ctx.Reached {
		return apperrors.NewRateLimited(MsgTooManyAttempts)
	}
	return c.Next()
}
