package router

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/staticd/internal/files"
	"github.com/Brownie44l1/staticd/internal/request"
	"github.com/Brownie44l1/staticd/internal/response"
)

// mapResolver serves files from memory and counts lookups
type mapResolver struct {
	files   map[string]string
	lookups int
}

func (m *mapResolver) Resolve(target string) ([]byte, error) {
	m.lookups++
	if target == "/" {
		target = "/index.html"
	}
	return m.ReadFile(target[1:])
}

func (m *mapResolver) ReadFile(name string) ([]byte, error) {
	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", files.ErrNotFound, name)
	}
	return []byte(data), nil
}

func mustParse(t *testing.T, raw string) *request.Request {
	t.Helper()
	req, err := request.Parse(request.Raw(raw))
	require.NoError(t, err)
	return req
}

func TestDispatchUnknownMethod(t *testing.T) {
	d := New()
	d.GET(func(*request.Request) response.Response { return response.OK([]byte("x")) })

	res := d.Dispatch(mustParse(t, "DELETE / HTTP/1.1\r\n\r\n"))
	assert.Equal(t, response.StatusBadRequest, res.Status)
	assert.Empty(t, res.Body)

	res = d.Dispatch(mustParse(t, "GET / HTTP/1.1\r\n\r\n"))
	assert.Equal(t, response.StatusOK, res.Status)
}

func TestMethodsAreCaseSensitive(t *testing.T) {
	d := NewStatic(&mapResolver{files: map[string]string{"index.html": "hello"}}, StaticOptions{})

	res := d.Dispatch(mustParse(t, "get / HTTP/1.1\r\n\r\n"))
	assert.Equal(t, response.StatusBadRequest, res.Status)
	assert.Equal(t, []string{"GET", "HEAD", "POST"}, d.Methods())
}

func TestMiddlewareOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(req *request.Request) response.Response {
				order = append(order, name)
				return next(req)
			}
		}
	}

	d := New()
	d.GET(func(*request.Request) response.Response {
		order = append(order, "handler")
		return response.OK(nil)
	})
	d.Use(mw("outer"), mw("inner"))

	d.Dispatch(mustParse(t, "GET /\r\n"))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)

	// Test: fallback runs through middleware as well
	order = nil
	d.Dispatch(mustParse(t, "PUT /\r\n"))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestStaticGET(t *testing.T) {
	r := &mapResolver{files: map[string]string{
		"index.html": "hello",
		"a.txt":      "alpha",
	}}
	d := NewStatic(r, StaticOptions{BadRequestPage: DefaultBadRequestPage})

	res := d.Dispatch(mustParse(t, "GET / HTTP/1.1\r\n\r\n"))
	assert.Equal(t, response.StatusOK, res.Status)
	assert.Equal(t, "hello", string(res.Body))

	res = d.Dispatch(mustParse(t, "GET /a.txt HTTP/1.1\r\n\r\n"))
	assert.Equal(t, response.StatusOK, res.Status)
	assert.Equal(t, "alpha", string(res.Body))

	res = d.Dispatch(mustParse(t, "GET /missing.txt HTTP/1.1\r\n\r\n"))
	assert.Equal(t, response.StatusNotFound, res.Status)
	assert.Empty(t, res.Body)
}

func TestStaticGETWithoutTarget(t *testing.T) {
	r := &mapResolver{files: map[string]string{"400.html": "bad"}}
	d := NewStatic(r, StaticOptions{BadRequestPage: DefaultBadRequestPage})

	res := d.Dispatch(mustParse(t, "GET\r\n\r\n"))
	assert.Equal(t, response.StatusBadRequest, res.Status)
	assert.Equal(t, "bad", string(res.Body))
	assert.Zero(t, r.lookups)
}

func TestStaticBadRequestPage(t *testing.T) {
	// Test: page present
	r := &mapResolver{files: map[string]string{"400.html": "<h1>400</h1>"}}
	d := NewStatic(r, StaticOptions{BadRequestPage: DefaultBadRequestPage})

	res := d.Dispatch(mustParse(t, "DELETE / HTTP/1.1\r\n\r\n"))
	assert.Equal(t, response.StatusBadRequest, res.Status)
	assert.Equal(t, "<h1>400</h1>", string(res.Body))
	assert.Zero(t, r.lookups)

	// Test: page missing
	d = NewStatic(&mapResolver{}, StaticOptions{BadRequestPage: DefaultBadRequestPage})
	res = d.Dispatch(mustParse(t, "PATCH / HTTP/1.1\r\n\r\n"))
	assert.Equal(t, response.StatusBadRequest, res.Status)
	assert.Empty(t, res.Body)
}

func TestStaticNotFoundPage(t *testing.T) {
	r := &mapResolver{files: map[string]string{"404.html": "gone"}}
	d := NewStatic(r, StaticOptions{NotFoundPage: "404.html"})

	res := d.Dispatch(mustParse(t, "GET /nope HTTP/1.1\r\n\r\n"))
	assert.Equal(t, response.StatusNotFound, res.Status)
	assert.Equal(t, "gone", string(res.Body))
}

func TestStaticHEAD(t *testing.T) {
	r := &mapResolver{files: map[string]string{"index.html": "hello"}}
	d := NewStatic(r, StaticOptions{})

	res := d.Dispatch(mustParse(t, "HEAD / HTTP/1.1\r\n\r\n"))
	assert.Equal(t, response.StatusOK, res.Status)
	assert.Nil(t, res.Body)

	res = d.Dispatch(mustParse(t, "HEAD /missing HTTP/1.1\r\n\r\n"))
	assert.Equal(t, response.StatusNotFound, res.Status)
	assert.Nil(t, res.Body)
}

func TestStaticPOST(t *testing.T) {
	r := &mapResolver{files: map[string]string{"index.html": "hello"}}
	d := NewStatic(r, StaticOptions{})

	res := d.Dispatch(mustParse(t, "POST / HTTP/1.1\r\nContent-Length: 3\r\n\r\nabc"))
	assert.Equal(t, response.StatusOK, res.Status)
	assert.Empty(t, res.Body)
	assert.Zero(t, r.lookups)
}

func TestStaticInvalidTarget(t *testing.T) {
	dir := t.TempDir()
	resolver, err := files.New(dir, "")
	require.NoError(t, err)
	defer resolver.Close()

	d := NewStatic(resolver, StaticOptions{})
	res := d.Dispatch(mustParse(t, "GET /%zz HTTP/1.1\r\n\r\n"))
	assert.Equal(t, response.StatusBadRequest, res.Status)
}

func TestStaticTraversal(t *testing.T) {
	parent := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(parent, "passwd"), []byte("root:x:0:0"), 0o644))
	dir := filepath.Join(parent, "www")
	require.NoError(t, os.Mkdir(dir, 0o755))

	resolver, err := files.New(dir, "")
	require.NoError(t, err)
	defer resolver.Close()

	d := NewStatic(resolver, StaticOptions{})
	res := d.Dispatch(mustParse(t, "GET /../passwd HTTP/1.1\r\n\r\n"))
	assert.Equal(t, response.StatusNotFound, res.Status)
	assert.NotContains(t, string(res.Body), "root:x")
}
