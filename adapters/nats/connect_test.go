package nats

import (
	"testing"

	natsgo "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
)

func TestReuseConnection(t *testing.T) {
	connect := ReuseConnection(NewTestContainer(t))

	nc1, release1, err := connect()
	require.NoError(t, err)
	require.Equal(t, natsgo.CONNECTED, nc1.Status())

	nc2, release2, err := connect()
	require.NoError(t, err)
	require.Same(t, nc1, nc2, "leases share one connection")

	release1()
	release1() // double release is a no-op
	require.Equal(t, natsgo.CONNECTED, nc1.Status())

	release2()
	require.Equal(t, natsgo.CLOSED, nc1.Status())

	nc3, release3, err := connect()
	require.NoError(t, err)
	require.NotSame(t, nc1, nc3)
	require.Equal(t, natsgo.CONNECTED, nc3.Status())
	release3()
}
