package actor

import "github.com/gdmec07150948/NetX/core/metrics"

// ActorMetrics defines the instrumentation hooks of an actor and its
// scheduler. All methods are thread-safe.
type ActorMetrics interface {
	// Dispatch
	MessageDuration(actor string, cmd int32) metrics.Timer
	MessageProcessed(actor string, success bool)
	MessagePanic(actor string)

	// Submission
	MessageRejected(actor string, reason string)
	MailboxDepth(actor string, depth int)

	// Scheduler
	SchedulerInflight(scheduler string, count int)
	SchedulerTaskDuration() metrics.Timer
	SchedulerTaskCompleted(success bool)
}

// Rejection reasons passed to MessageRejected.
const (
	RejectDisposed  = "disposed"
	RejectQueueFull = "queue_full"
)

type nopActorMetrics struct{}

func (nopActorMetrics) MessageDuration(string, int32) metrics.Timer { return metrics.NopTimer() }
func (nopActorMetrics) MessageProcessed(string, bool)             {}
func (nopActorMetrics) MessagePanic(string)                       {}

func (nopActorMetrics) MessageRejected(string, string) {}
func (nopActorMetrics) MailboxDepth(string, int)       {}

func (nopActorMetrics) SchedulerInflight(string, int)        {}
func (nopActorMetrics) SchedulerTaskDuration() metrics.Timer { return metrics.NopTimer() }
func (nopActorMetrics) SchedulerTaskCompleted(bool)          {}

// NopActorMetrics returns a no-op ActorMetrics implementation.
func NopActorMetrics() ActorMetrics { return nopActorMetrics{} }
