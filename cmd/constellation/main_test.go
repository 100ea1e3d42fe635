package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

const gardenFixture = `{
  "name": "alpha",
  "questions": [
    {
      "id": "q1",
      "seed": {
        "content": "What does it mean to listen?",
        "plantedBy": {"type": "named", "name": "Ada"},
        "plantedAt": "2025-01-01T10:00:00Z"
      },
      "growth": [
        {
          "content": "To leave room.",
          "tendedBy": {"type": "unnamed"},
          "tendedAt": "2025-01-02T10:00:00Z"
        }
      ],
      "visits": [
        {"timestamp": "2025-01-03T10:00:00Z"},
        {"timestamp": "2025-01-04T10:00:00Z"}
      ]
    }
  ]
}`

func TestMainIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	home := t.TempDir()
	gardensDir := filepath.Join(t.TempDir(), "gardens")
	require.NoError(t, os.MkdirAll(gardensDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(gardensDir, "alpha.json"), []byte(gardenFixture), 0o600))

	port := freePort(t)
	t.Setenv("HOME", home)
	t.Setenv("SERVER_HTTP_HOST", "127.0.0.1")
	t.Setenv("SERVER_HTTP_PORT", strconv.Itoa(port))
	t.Setenv("GARDENS_DIR", gardensDir)
	t.Setenv("LETTERS_PATH", filepath.Join(t.TempDir(), "letters.json"))
	t.Setenv("LOGGING_LEVEL", "error")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, "")
	}()

	base := "http://127.0.0.1:" + strconv.Itoa(port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	resp, err := http.Get(base + "/api/v1/constellation")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view struct {
		GardenSummaries []struct {
			Name      string `json:"name"`
			Questions int    `json:"questions"`
		} `json:"gardenSummaries"`
		Totals struct {
			Visits int `json:"totalVisits"`
		} `json:"totals"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	require.Len(t, view.GardenSummaries, 1)
	assert.Equal(t, "alpha", view.GardenSummaries[0].Name)
	assert.Equal(t, 2, view.Totals.Visits)

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shutdown in time")
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SERVER_HTTP_PORT", "0")

	err := run(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading configuration")
}
