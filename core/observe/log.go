package observe

import (
	"context"
	"log/slog"

	"github.com/gdmec07150948/NetX/core/actor"
)

// Log writes one line per dispatched message. Successes are logged at
// level, failures at Warn.
func Log(log *slog.Logger, level slog.Level) actor.Observer {
	if log == nil {
		log = slog.Default()
	}
	return func(c actor.Controller, env *actor.Envelope) {
		r := RecordOf(c, env)
		lvl := level
		if r.Failed() {
			lvl = slog.LevelWarn
		}
		if !log.Enabled(context.Background(), lvl) {
			return
		}
		attrs := []slog.Attr{
			slog.String("actor", r.Actor),
			slog.Int64("id", r.ID),
			slog.Int("cmd", int(r.Cmd)),
			slog.Duration("latency", r.Latency),
		}
		if r.Error != "" {
			attrs = append(attrs, slog.String("error", r.Error))
		}
		if r.Result != nil {
			attrs = append(attrs, slog.String("error_result", r.Result.ErrorMsg))
		}
		log.LogAttrs(context.Background(), lvl, "message dispatched", attrs...)
	}
}
