package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetta-app/vetta/internal/errors"
	"github.com/vetta-app/vetta/internal/logging"
	"github.com/vetta-app/vetta/internal/models"
	"github.com/vetta-app/vetta/internal/repositories"
	"github.com/vetta-app/vetta/internal/scoring"
	"github.com/vetta-app/vetta/internal/sqlite"
)

// stubScorer stands in for the OpenAI client so the tests never hit the
// network.
type stubScorer struct{}

func (stubScorer) Analyze(_ context.Context, _ scoring.AnalyzeInput) (scoring.Analysis, error) {
	return scoring.Analysis{
		RiskScore:        scoring.RiskLow,
		RiskScoreNumeric: 82,
		ResultSummary:    "Applicant looks steady overall.",
		Pros:             [2]string{"Long job tenure", "Has a support system"},
		Cons:             [2]string{"Short residence time", "Out-of-state license"},
		Reasoning:        "- tenure 24 months\n- support available",
	}, nil
}

func (stubScorer) Coach(_ context.Context, _ scoring.FunnelStats) (string, error) {
	return "Follow up with scanned leads within one day.", nil
}

// waitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func waitForReady(ctx context.Context, endpoint string) error {
	timeout := 1 * time.Second
	client := http.Client{}
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			endpoint,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(250 * time.Millisecond)
		}
	}
}

// provisionDealer creates a dealer directly in the database file before the
// server opens it, the same way the admin CLI would.
func provisionDealer(t *testing.T, dbPath string) *models.Dealer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dbs, err := sqlite.NewDatabase(dbPath, logger)
	require.NoError(t, err)
	dealer, err := repositories.NewDealerRepository(dbs, logger).Create(context.Background(), "Sunrise Auto", "sunrise-auto")
	require.NoError(t, err)
	require.NoError(t, dbs.Close())
	return dealer
}

func testLookupEnv(dbPath string, overrides map[string]string) func(string) (string, bool) {
	env := map[string]string{
		"VETTA_ADDR":       "localhost:0",
		"VETTA_SQLITE_URL": dbPath,
		"VETTA_RATE_LIMIT": "1000",
	}
	for k, v := range overrides {
		env[k] = v
	}
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

type testServer struct {
	url    string
	dealer *models.Dealer
	client http.Client
}

// startTestServer boots the full application on localhost:0 with a stub
// scorer and a fresh database, and returns a client holding a cookie jar.
func startTestServer(t *testing.T, overrides map[string]string) testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	dbPath := filepath.Join(t.TempDir(), "vetta.sqlite")
	dealer := provisionDealer(t, dbPath)

	// We need to grab the dynamically allocated port from the log output.
	addrCh := make(chan string, 1)
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "Addr" {
				addrCh <- a.Value.String()
			}
			return a
		},
	})))

	go func() {
		if err := run(ctx, logger, testLookupEnv(dbPath, overrides), stubScorer{}); err != nil {
			cancel()
			assert.NoError(t, err)
		}
	}()
	select {
	case <-ctx.Done():
		t.Fatal("server failed to start")
		return testServer{}
	case addr := <-addrCh:
		serverURL := fmt.Sprintf("http://%s", addr)
		require.NoError(t, waitForReady(ctx, fmt.Sprintf("%s/api/healthy", serverURL)))
		jar, err := cookiejar.New(nil)
		require.NoError(t, err)
		return testServer{
			url:    serverURL,
			dealer: dealer,
			client: http.Client{Jar: jar},
		}
	}
}

// PostJSON sends a JSON body and returns the response.
func (s *testServer) PostJSON(t *testing.T, urlPath string, body any) *http.Response {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := s.client.Post(s.url+urlPath, "application/json", bytes.NewReader(encoded))
	require.NoError(t, err)
	return resp
}

// Get fetches a URL and returns the response.
func (s *testServer) Get(t *testing.T, urlPath string) *http.Response {
	t.Helper()
	resp, err := s.client.Get(s.url + urlPath)
	require.NoError(t, err)
	return resp
}

// Delete sends a DELETE request and returns the response.
func (s *testServer) Delete(t *testing.T, urlPath string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, s.url+urlPath, nil)
	require.NoError(t, err)
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	return resp
}

// decodeBody decodes a JSON response body into a generic map and closes it.
func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// Login exchanges the provisioned dealer's API key for a session cookie.
func (s *testServer) Login(t *testing.T) {
	t.Helper()
	resp := s.PostJSON(t, "/api/login", map[string]string{"api_key": s.dealer.APIKey})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp)
}
