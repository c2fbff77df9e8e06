package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/merobase/internal/domain/activity"
	"github.com/rpggio/merobase/internal/domain/sample"
	"github.com/rpggio/merobase/internal/mcp"
	"github.com/rpggio/merobase/internal/memory"
	"github.com/rpggio/merobase/internal/metrics"
	"github.com/rpggio/merobase/internal/sqlite"
	"github.com/rpggio/merobase/internal/transport"
	"github.com/stretchr/testify/require"
)

// TestServer is the full HTTP stack over an in-memory slot store and an
// in-memory SQLite activity log.
type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Slots    *memory.SlotStore
	Samples  *sample.Service
	Activity *activity.Service
	Metrics  *metrics.Recorder
}

// New starts a server. Options configure the sample service.
func New(t *testing.T, opts ...sample.Option) *TestServer {
	t.Helper()
	return NewWithSlots(t, memory.NewSlotStore(), opts...)
}

// NewWithSlots starts a server on an existing slot store, so tests can seed
// documents or share a store between servers.
func NewWithSlots(t *testing.T, slots *memory.SlotStore, opts ...sample.Option) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	recorder := metrics.NewRecorder(false)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)
	opts = append([]sample.Option{sample.WithMetrics(recorder)}, opts...)
	samples := sample.NewService(slots, activitySvc, nil, opts...)
	require.NoError(t, samples.Load(context.Background()))

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      mcp.Services{Samples: samples, Activity: activitySvc},
		TransportMode: "http",
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server { return mcpServer }, nil)

	server := httptest.NewServer(transport.NewServer(transport.Routes{
		MCP:     mcpHandler,
		Metrics: recorder.Handler(),
	}))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:   server,
		DB:       db,
		Slots:    slots,
		Samples:  samples,
		Activity: activitySvc,
		Metrics:  recorder,
	}
}

// Connect opens an MCP client session against the server's /mcp endpoint.
func (ts *TestServer) Connect(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint: ts.Server.URL + "/mcp",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}
