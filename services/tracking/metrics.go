package tracking

// Metrics receives tracking counters. A nil Metrics is never passed to
// components; use NopMetrics instead.
type Metrics interface {
	PositionPublished()
	TrackingEnded()
	InputRejected(field string)
	SubscriberAdded()
	SubscriberRemoved(reason string)
	KeepAliveSent()
	StalePurged(n int)
}

// NopMetrics discards every observation
type NopMetrics struct{}

func (NopMetrics) PositionPublished()       {}
func (NopMetrics) TrackingEnded()           {}
func (NopMetrics) InputRejected(string)     {}
func (NopMetrics) SubscriberAdded()         {}
func (NopMetrics) SubscriberRemoved(string) {}
func (NopMetrics) KeepAliveSent()           {}
func (NopMetrics) StalePurged(int)          {}
