package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Malowking/kbrag/core/errors"
	"github.com/Malowking/kbrag/core/model"
	"github.com/Malowking/kbrag/internal/service"
	"github.com/Malowking/kbrag/internal/testutil"
	"github.com/gogf/gf/v2/encoding/gjson"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/net/gclient"
	"github.com/gogf/gf/v2/util/guid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer 启动绑定了假模型的服务器，不加载重排序模型
func startServer(t *testing.T) *gclient.Client {
	t.Helper()
	handles := model.NewLoadedHandles(model.Config{}, &testutil.HashEmbedder{}, &testutil.Generator{Reply: "answer"}, nil, nil)
	svcs := service.New(handles, testutil.NewStore(t), 2)

	s := g.Server(guid.S())
	s.SetAddr("127.0.0.1:0")
	s.SetDumpRouterMap(false)
	RegisterRoutes(s, svcs)
	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Shutdown() })
	time.Sleep(100 * time.Millisecond)

	client := g.Client()
	client.SetPrefix(fmt.Sprintf("http://127.0.0.1:%d", s.GetListenedPort()))
	return client
}

func call(t *testing.T, client *gclient.Client, method, path string, body interface{}) (int, *gjson.Json) {
	t.Helper()
	resp, err := client.ContentJson().DoRequest(context.Background(), method, path, body)
	require.NoError(t, err)
	defer resp.Close()

	j, err := gjson.DecodeToJson(resp.ReadAll())
	require.NoError(t, err)
	return resp.StatusCode, j
}

func TestRoutes(t *testing.T) {
	client := startServer(t)

	t.Run("health", func(t *testing.T) {
		status, j := call(t, client, http.MethodGet, "/api/v1/health", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, 0, j.Get("code").Int())
		assert.Equal(t, "healthy", j.Get("data.status").String())
	})

	t.Run("add then search", func(t *testing.T) {
		status, j := call(t, client, http.MethodPost, "/api/v1/documents", g.Map{
			"documents": g.Array{
				g.Map{"id": "doc-1", "content": "vector search engine", "title": "Vectors"},
				g.Map{"id": "doc-2", "content": "cooking pasta"},
			},
		})
		require.Equal(t, http.StatusOK, status)
		assert.True(t, j.Get("data.success").Bool())
		assert.Equal(t, []string{"doc-1", "doc-2"}, j.Get("data.document_ids").Strings())

		status, j = call(t, client, http.MethodPost, "/api/v1/search", g.Map{"query": "vector search", "limit": 1})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, 1, j.Get("data.total_found").Int())
		assert.Equal(t, "doc-1", j.Get("data.documents.0.id").String())
	})

	t.Run("request validation is 400", func(t *testing.T) {
		status, j := call(t, client, http.MethodPost, "/api/v1/search", g.Map{"query": "", "limit": 5})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, int(errors.ErrInvalidParameter), j.Get("code").Int())

		status, _ = call(t, client, http.MethodPost, "/api/v1/search", g.Map{"query": "q", "limit": 51})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("oversized title is 400", func(t *testing.T) {
		status, j := call(t, client, http.MethodPost, "/api/v1/documents", g.Map{
			"documents": g.Array{
				g.Map{"content": "text", "title": strings.Repeat("t", 501)},
			},
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, int(errors.ErrInvalidParameter), j.Get("code").Int())
	})

	t.Run("rerank input error is 400", func(t *testing.T) {
		status, j := call(t, client, http.MethodPost, "/api/v1/rerank", g.Map{
			"query":     "q",
			"documents": g.Array{"a", "b"},
			"top_k":     3,
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, int(errors.ErrInvalidParameter), j.Get("code").Int())
	})

	t.Run("model not loaded is 503", func(t *testing.T) {
		status, j := call(t, client, http.MethodPost, "/api/v1/rerank", g.Map{
			"query":     "q",
			"documents": g.Array{"a", "b"},
		})
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Equal(t, int(errors.ErrModelNotLoaded), j.Get("code").Int())

		status, j = call(t, client, http.MethodGet, "/api/v1/rerank/status", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.False(t, j.Get("data.is_loaded").Bool())
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		resp, err := client.Get(context.Background(), "/metrics")
		require.NoError(t, err)
		defer resp.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.ReadAllString(), "kbrag_")
	})

	t.Run("delete missing document succeeds", func(t *testing.T) {
		status, j := call(t, client, http.MethodDelete, "/api/v1/documents/unknown-id", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.True(t, j.Get("data.success").Bool())
	})
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   int
	}{
		{name: "validation", err: errors.New(errors.ErrInvalidParameter, "bad"), status: http.StatusBadRequest, code: 1001},
		{name: "not loaded", err: errors.New(errors.ErrModelNotLoaded, "x"), status: http.StatusServiceUnavailable, code: 2008},
		{name: "store", err: errors.Wrapf(fmt.Errorf("conn reset"), errors.ErrVectorSearch, "search"), status: http.StatusInternalServerError, code: 5002},
		{name: "plain", err: fmt.Errorf("boom"), status: http.StatusInternalServerError, code: 1003},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := statusOf(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}
