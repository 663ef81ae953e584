package prometheus

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gdmec07150948/NetX/core/actor"
	"github.com/gdmec07150948/NetX/core/metrics"
)

// actorMetrics implements actor.ActorMetrics using Prometheus.
type actorMetrics struct {
	messageDuration       *prometheus.HistogramVec
	messagesTotal         *prometheus.CounterVec
	panicTotal            *prometheus.CounterVec
	rejectedTotal         *prometheus.CounterVec
	mailboxDepth          *prometheus.GaugeVec
	schedulerInflight     *prometheus.GaugeVec
	schedulerTaskDuration prometheus.Histogram
	schedulerTasksTotal   *prometheus.CounterVec
}

// NewActorMetrics creates the actor collectors and registers them with reg.
func NewActorMetrics(reg prometheus.Registerer) actor.ActorMetrics {
	m := &actorMetrics{
		messageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "actor_message_duration_seconds",
			Help:      "Dispatch time of a message in seconds",
			Buckets:   defaultBuckets,
		}, []string{"actor", "cmd"}),

		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_messages_total",
			Help:      "Total number of dispatched messages",
		}, []string{"actor", "success"}),

		panicTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_panics_total",
			Help:      "Total number of controller operation panics",
		}, []string{"actor"}),

		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_rejected_total",
			Help:      "Total number of submissions rejected before enqueue",
		}, []string{"actor", "reason"}),

		mailboxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "actor_mailbox_depth",
			Help:      "Current mailbox queue depth",
		}, []string{"actor"}),

		schedulerInflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "actor_scheduler_inflight",
			Help:      "Number of running drain loops",
		}, []string{"scheduler"}),

		schedulerTaskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "actor_scheduler_task_duration_seconds",
			Help:      "Drain loop run time in seconds",
			Buckets:   defaultBuckets,
		}),

		schedulerTasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_scheduler_tasks_total",
			Help:      "Total number of drain loop runs",
		}, []string{"success"}),
	}

	reg.MustRegister(
		m.messageDuration,
		m.messagesTotal,
		m.panicTotal,
		m.rejectedTotal,
		m.mailboxDepth,
		m.schedulerInflight,
		m.schedulerTaskDuration,
		m.schedulerTasksTotal,
	)

	return m
}

func (m *actorMetrics) MessageDuration(actor string, cmd int32) metrics.Timer {
	return newTimer(m.messageDuration.WithLabelValues(actor, strconv.Itoa(int(cmd))))
}

func (m *actorMetrics) MessageProcessed(actor string, success bool) {
	m.messagesTotal.WithLabelValues(actor, boolToStr(success)).Inc()
}

func (m *actorMetrics) MessagePanic(actor string) {
	m.panicTotal.WithLabelValues(actor).Inc()
}

func (m *actorMetrics) MessageRejected(actor string, reason string) {
	m.rejectedTotal.WithLabelValues(actor, reason).Inc()
}

func (m *actorMetrics) MailboxDepth(actor string, depth int) {
	m.mailboxDepth.WithLabelValues(actor).Set(float64(depth))
}

func (m *actorMetrics) SchedulerInflight(scheduler string, count int) {
	m.schedulerInflight.WithLabelValues(scheduler).Set(float64(count))
}

func (m *actorMetrics) SchedulerTaskDuration() metrics.Timer {
	return newTimer(m.schedulerTaskDuration)
}

func (m *actorMetrics) SchedulerTaskCompleted(success bool) {
	m.schedulerTasksTotal.WithLabelValues(boolToStr(success)).Inc()
}

var _ actor.ActorMetrics = (*actorMetrics)(nil)
