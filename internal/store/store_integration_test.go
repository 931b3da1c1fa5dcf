//go:build integration

package store

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"imdbdataset/internal/schema"
)

// dockerAvailable mirrors the reference project's own Docker preflight check:
// skip rather than fail when nothing in the environment can run containers.
func dockerAvailable(t *testing.T) bool {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// TestOpenDetectsPostgresDialect spins up a real Postgres server and verifies
// that Open selects the pgx driver and the Postgres dialect for a "://"
// connection string, and that the connection actually round-trips.
func TestOpenDetectsPostgresDialect(t *testing.T) {
	if !dockerAvailable(t) {
		t.Skip("docker not available")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "imdb",
			"POSTGRES_PASSWORD": "imdb",
			"POSTGRES_DB":       "imdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer container.Terminate(ctx)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := "postgres://imdb:imdb@" + host + ":" + port.Port() + "/imdb?sslmode=disable"

	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, schema.Postgres, s.Dialect)
	require.NoError(t, s.DB.PingContext(ctx))
}
