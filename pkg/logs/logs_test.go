package logs

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/studio_backend/config"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{}
	cfg.Logging.Level = "warn"
	cfg.Server.Environment = "production"

	log := NewWithWriter(cfg, &buf)
	log.Info("dropped")
	log.Warn("kept", "ip", "203.0.113.7")

	var rec map[string]any
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "studio_backend", rec["service"])
	assert.Equal(t, "203.0.113.7", rec["ip"])
}

func TestLokiWriter(t *testing.T) {
	var got lokiPush
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/loki/api/v1/push", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, sonic.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Server.Environment = "production"
	cfg.Logging.Output.Loki.Endpoint = srv.URL + "/"

	lw := newLokiWriter(cfg)
	lw.now = func() time.Time { return time.Unix(0, 42) }

	line := []byte(`{"msg":"a \"quoted\" line"}` + "\n")
	n, err := lw.Write(line)
	require.NoError(t, err)
	assert.Equal(t, len(line), n)

	require.Len(t, got.Streams, 1)
	assert.Equal(t, "production", got.Streams[0].Stream["env"])
	assert.Equal(t, [2]string{"42", `{"msg":"a \"quoted\" line"}`}, got.Streams[0].Values[0])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "INFO", parseLevel("nonsense").String())
}
