package actor

import "time"

type (
	// Controller is the object an actor serializes access to. Implementations
	// embed [Base] and list their tagged operations in Commands, which is
	// called once when the actor is built.
	Controller interface {
		Commands() []Command
		controllerBase() *Base
	}

	// OptionsProvider lets a controller declare its own actor options. Options
	// passed to [New] take precedence field by field.
	OptionsProvider interface {
		ActorOptions() Options
	}

	// Lookup finds the actor serving a command tag.
	Lookup interface {
		Get(tag int32) (*Actor, bool)
	}

	// Observer is invoked on the drain goroutine after each dispatch and before
	// the caller's completion handle resolves. Controller state may be read
	// freely from inside an observer.
	Observer func(c Controller, env *Envelope)
)

// Base carries the actor owned state of a controller. Its fields are written
// only by the drain loop, so they are safe to read from handlers and observers
// without locking.
type Base struct {
	orderTime time.Time
	self      *Actor
	peers     Lookup
}

func (b *Base) controllerBase() *Base { return b }

// OrderTime is the push time of the message currently (or last) dispatched.
func (b *Base) OrderTime() time.Time { return b.orderTime }

// Self returns the actor the controller is bound to.
func (b *Base) Self() *Actor { return b.self }

// Peer returns the actor serving tag. The controller's own actor is checked
// first, then the lookup configured through [Options.Peers].
func (b *Base) Peer(tag int32) (*Actor, bool) {
	if b.self != nil {
		if _, ok := b.self.registry.lookup(tag); ok {
			return b.self, true
		}
	}
	if b.peers == nil {
		return nil, false
	}
	return b.peers.Get(tag)
}
