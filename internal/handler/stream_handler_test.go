package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/vibely/vibely-backend/internal/stream"
)

func newStreamServer(t *testing.T, registry *stream.Registry, userID string) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/stream", func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}, NewStreamHandler(registry, time.Hour).Connect)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func openStream(t *testing.T, ctx context.Context, url string) (*bufio.Reader, func()) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/stream", nil)
	assert.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return bufio.NewReader(resp.Body), func() { resp.Body.Close() }
}

func TestStreamHandler_DeliversPushedEnvelope(t *testing.T) {
	registry := stream.NewRegistry(8)
	srv := newStreamServer(t, registry, "bob")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	reader, closeBody := openStream(t, ctx, srv.URL)
	defer closeBody()

	// The connect banner confirms registration completed.
	line, err := reader.ReadString('\n')
	assert.NoError(t, err)
	assert.Equal(t, ": connected\n", line)
	_, err = reader.ReadString('\n')
	assert.NoError(t, err)

	registry.Push("bob", stream.UnsentEnvelope("m1"))

	line, err = reader.ReadString('\n')
	assert.NoError(t, err)
	assert.Equal(t, "data: {\"type\":\"unsent\",\"messageId\":\"m1\"}\n", line)
}

func TestStreamHandler_ReconnectSupersedesOldStream(t *testing.T) {
	registry := stream.NewRegistry(8)
	srv := newStreamServer(t, registry, "bob")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first, closeFirst := openStream(t, ctx, srv.URL)
	defer closeFirst()
	line, _ := first.ReadString('\n')
	assert.Equal(t, ": connected\n", line)
	first.ReadString('\n')

	second, closeSecond := openStream(t, ctx, srv.URL)
	defer closeSecond()
	line, _ = second.ReadString('\n')
	assert.Equal(t, ": connected\n", line)
	second.ReadString('\n')

	// The first stream is closed server-side once the second registers.
	_, err := first.ReadString('\n')
	assert.Error(t, err)

	// Events flow on the replacement only.
	registry.Push("bob", stream.UnsentEnvelope("m1"))
	line, err = second.ReadString('\n')
	assert.NoError(t, err)
	assert.Contains(t, line, "\"messageId\":\"m1\"")
}
