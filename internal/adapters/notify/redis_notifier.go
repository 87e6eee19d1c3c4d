package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/sacco_ledger/internal/core/ports/services"
	"github.com/SscSPs/sacco_ledger/internal/middleware"
)

// Publisher is the part of the redis client used to publish notifications.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier publishes committed repayments as JSON on a redis channel.
type RedisNotifier struct {
	publisher Publisher
	channel   string
}

// NewRedisNotifier creates a notifier publishing on channel.
func NewRedisNotifier(publisher Publisher, channel string) *RedisNotifier {
	return &RedisNotifier{publisher: publisher, channel: channel}
}

var _ portssvc.RepaymentNotifier = (*RedisNotifier)(nil)

// NotifyRepayment publishes event. Delivery is at most once; a failure is returned and not retried.
func (n *RedisNotifier) NotifyRepayment(ctx context.Context, event domain.RepaymentReceived) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode repayment notification: %w", err)
	}
	receivers, err := n.publisher.Publish(ctx, n.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("failed to publish repayment notification: %w", err)
	}
	middleware.GetLoggerFromCtx(ctx).Debug("Repayment notification published",
		slog.String("channel", n.channel),
		slog.String("repayment_id", event.RepaymentID),
		slog.Int64("receivers", receivers))
	return nil
}

// LogNotifier writes repayments to the log. Used when no redis is configured.
type LogNotifier struct{}

var _ portssvc.RepaymentNotifier = LogNotifier{}

func (LogNotifier) NotifyRepayment(ctx context.Context, event domain.RepaymentReceived) error {
	middleware.GetLoggerFromCtx(ctx).Info("Repayment received",
		slog.String("repayment_id", event.RepaymentID),
		slog.String("loan_id", event.LoanID),
		slog.String("member_id", event.MemberID),
		slog.String("amount", event.Amount.StringFixed(2)),
		slog.String("loan_status", string(event.LoanStatus)))
	return nil
}
