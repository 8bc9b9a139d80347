package events

import (
	"fmt"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"go.uber.org/zap"
)

// embeddedReadyTimeout bounds how long startup waits for the embedded
// server to accept connections.
const embeddedReadyTimeout = 5 * time.Second

// StartEmbeddedServer runs an in-process NATS server for standalone
// deployments where no external broker is available. Port 0 or negative
// picks a random free port; the caller connects via ClientURL.
func StartEmbeddedServer(port int, logger *zap.Logger) (*natsserver.Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := &natsserver.Options{
		Host:   "127.0.0.1",
		Port:   port,
		NoLog:  true,
		NoSigs: true,
	}
	if port <= 0 {
		opts.Port = natsserver.RANDOM_PORT
	}

	srv, err := natsserver.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedded NATS server: %w", err)
	}

	go srv.Start()
	if !srv.ReadyForConnections(embeddedReadyTimeout) {
		srv.Shutdown()
		return nil, fmt.Errorf("embedded NATS server not ready after %s", embeddedReadyTimeout)
	}

	logger.Info("embedded NATS server started", zap.String("url", srv.ClientURL()))
	return srv, nil
}
