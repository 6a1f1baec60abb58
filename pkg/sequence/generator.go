package sequence

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("sequence",
	fx.Provide(NewRedisGenerator),
)

type Generator interface {
	NextTransactionCode(ctx context.Context, userID string) (string, error)
	NextPayoutCode(ctx context.Context, userID string) (string, error)
	NextVerificationCode(ctx context.Context) (string, error)
}

type RedisGenerator struct {
	rdb *redis.Client
}

type Params struct {
	fx.In

	Redis *redis.Client
}

func NewRedisGenerator(p Params) Generator {
	return &RedisGenerator{
		rdb: p.Redis,
	}
}

func (g *RedisGenerator) NextTransactionCode(ctx context.Context, userID string) (string, error) {
	return g.nextDailyCode(ctx, "TXN", userID)
}

func (g *RedisGenerator) NextPayoutCode(ctx context.Context, userID string) (string, error) {
	return g.nextDailyCode(ctx, "PAY", userID)
}

// NextVerificationCode builds the token expected in a domain TXT record.
func (g *RedisGenerator) NextVerificationCode(ctx context.Context) (string, error) {
	suffix, err := randomAlphaNumeric(12)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("dreamseller-verify=%s", suffix), nil
}

func (g *RedisGenerator) nextDailyCode(ctx context.Context, prefix, userID string) (string, error) {
	today := time.Now().UTC().Format("060102")
	key := fmt.Sprintf("seq:%s:%s:%s", prefix, userID, today)

	seq, err := g.rdb.Incr(ctx, key).Result()
	if err != nil {
		return "", err
	}

	if seq == 1 {
		expire := time.Until(time.Now().Truncate(24 * time.Hour).Add(24*time.Hour - time.Second))
		_ = g.rdb.Expire(ctx, key, expire).Err()
	}

	// base36, padded so short sequences do not look truncated
	encodedSeq := strings.ToUpper(fmt.Sprintf("%03s", strconv.FormatInt(seq, 36)))

	randSuffix, _ := randomAlphaNumeric(2)

	return fmt.Sprintf("%s-%s-%s%s", prefix, today, encodedSeq, randSuffix), nil
}

func randomAlphaNumeric(n int) (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	b := make([]byte, n)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		if err != nil {
			return "", err
		}
		b[i] = chars[num.Int64()]
	}
	return string(b), nil
}
