package actor

import "context"

type dispatchKey struct{}

func withDispatch(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, dispatchKey{}, a)
}

// FromContext returns the actor whose drain loop is running the handler that
// received ctx.
func FromContext(ctx context.Context) (*Actor, bool) {
	a, ok := ctx.Value(dispatchKey{}).(*Actor)
	return a, ok && a != nil
}
