package nats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type Testing interface {
	require.TestingT
	Helper()
	Context() context.Context
	Logf(format string, args ...any)
	Skipf(format string, args ...any)
	Cleanup(func())
}

// TestImage is the server image started by NewTestContainer.
var TestImage = "nats:2.11"

// NewTestContainer starts a JetStream enabled NATS server for the duration of
// the test and returns a Connector for it. It skips in -short mode.
func NewTestContainer(t Testing) Connector {
	t.Helper()
	if testing.Short() {
		t.Skipf("nats container skipped in short mode")
	}

	ctx := t.Context()
	natsC, err := testcontainers.Run(
		ctx, TestImage,
		testcontainers.WithCmd("-js"),
		testcontainers.WithExposedPorts("4222/tcp"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("4222/tcp"),
			wait.ForLog("Server is ready"),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(natsC); err != nil {
			t.Errorf("failed to terminate container: %s", err.Error())
		}
	})

	endpoint, err := natsC.PortEndpoint(ctx, "4222/tcp", "nats")
	require.NoError(t, err)
	t.Logf("nats endpoint: %s", endpoint)
	return ConnectURL(endpoint)
}
