package observe

import (
	"time"

	"github.com/gdmec07150948/NetX/core/actor"
)

// Record describes one dispatched message. It is the payload of the event
// feed and the meta of state snapshots.
type Record struct {
	Actor        string             `json:"actor"`
	ActorID      string             `json:"actor_id,omitempty"`
	ID           int64              `json:"id"`
	Cmd          int32              `json:"cmd"`
	PushTime     time.Time          `json:"push_time"`
	CompleteTime time.Time          `json:"complete_time"`
	Latency      time.Duration      `json:"latency_ns"`
	Error        string             `json:"error,omitempty"`
	Result       *actor.ErrorResult `json:"error_result,omitempty"`
}

// Failed reports whether the message faulted or resolved to an error result.
func (r Record) Failed() bool { return r.Error != "" || r.Result != nil }

// RecordOf builds the record of env, dispatched by the actor bound to c.
func RecordOf(c actor.Controller, env *actor.Envelope) Record {
	r := Record{
		ID:           env.ID(),
		Cmd:          env.Cmd(),
		PushTime:     env.PushTime(),
		CompleteTime: env.CompleteTime(),
		Latency:      env.CompleteTime().Sub(env.PushTime()),
	}
	if a := selfOf(c); a != nil {
		r.Actor, r.ActorID = a.Name(), a.ID()
	}
	v, err := env.Outcome()
	if err != nil {
		r.Error = err.Error()
	}
	if er, ok := actor.AsErrorResult(v); ok {
		r.Result = er
	}
	return r
}

func (r Record) meta() map[string]any {
	m := map[string]any{
		"actor":         r.Actor,
		"id":            r.ID,
		"cmd":           r.Cmd,
		"push_time":     r.PushTime.Format(time.RFC3339Nano),
		"complete_time": r.CompleteTime.Format(time.RFC3339Nano),
	}
	if r.Error != "" {
		m["error"] = r.Error
	}
	return m
}

func selfOf(c actor.Controller) *actor.Actor {
	if s, ok := c.(interface{ Self() *actor.Actor }); ok {
		return s.Self()
	}
	return nil
}
