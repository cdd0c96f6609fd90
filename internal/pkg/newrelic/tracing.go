package newrelic

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// FromContext extracts New Relic transaction from standard context
func FromContext(ctx context.Context) *newrelic.Transaction {
	return newrelic.FromContext(ctx)
}

// AddTransactionAttribute adds a custom attribute to the transaction in ctx, if any
func AddTransactionAttribute(ctx context.Context, key string, value interface{}) {
	if txn := FromContext(ctx); txn != nil {
		txn.AddAttribute(key, value)
	}
}

// IgnoreTransaction drops the transaction in ctx from APM data
func IgnoreTransaction(ctx context.Context) {
	if txn := FromContext(ctx); txn != nil {
		txn.Ignore()
	}
}

// StartNATSProducerSegment times a publish to subject. Returns nil when ctx
// carries no transaction; End on the result must then be skipped.
func StartNATSProducerSegment(ctx context.Context, subject string) *newrelic.MessageProducerSegment {
	txn := FromContext(ctx)
	if txn == nil {
		return nil
	}
	return &newrelic.MessageProducerSegment{
		StartTime:       txn.StartSegmentNow(),
		Library:         "NATS",
		DestinationType: newrelic.MessageTopic,
		DestinationName: subject,
	}
}
