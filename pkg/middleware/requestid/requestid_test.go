package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, Value(c)+"|"+FromContext(c.Request.Context()))
	})
	return r
}

func serve(id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id != "" {
		req.Header.Set(Header, id)
	}
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)
	return w
}

func TestMiddlewareMintsID(t *testing.T) {
	w := serve("")

	id := w.Header().Get(Header)
	assert.Len(t, id, 36)
	assert.Equal(t, id+"|"+id, w.Body.String())
}

func TestMiddlewareHonoursSafeInboundID(t *testing.T) {
	w := serve("gw-7f3a:booking.42")
	assert.Equal(t, "gw-7f3a:booking.42", w.Header().Get(Header))
	assert.Equal(t, "gw-7f3a:booking.42|gw-7f3a:booking.42", w.Body.String())
}

func TestMiddlewareReplacesUnsafeInboundID(t *testing.T) {
	for _, id := range []string{strings.Repeat("x", 200), "a b", "id\r\nX-Evil: 1", "<script>"} {
		w := serve(id)
		got := w.Header().Get(Header)
		assert.NotEqual(t, id, got)
		assert.Len(t, got, 36, id)
	}
}

func TestFromContextWithoutID(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
	assert.Equal(t, "abc", FromContext(NewContext(context.Background(), "abc")))
}
