package docs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!doctype html>
<html><head><title>ignored</title><style>body{color:red}</style></head>
<body>
<script>var x = "hidden";</script>
<h1>curl</h1>
<p>curl is a tool for <b>transferring</b> data.</p>
<ul><li>first</li><li>second</li></ul>
<svg><text>icon</text></svg>
line one<br/>line two
</body></html>`

func TestHTTPFetcher(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL+"/search?q={query}", time.Second)
	text, err := f.Fetch(context.Background(), "curl options")
	require.NoError(t, err)

	assert.Equal(t, "curl options", gotQuery)
	assert.Equal(t, "curl\ncurl is a tool for transferring data.\nfirst\nsecond\nline one\nline two", text)
	assert.NotContains(t, text, "hidden")
	assert.NotContains(t, text, "ignored")
	assert.NotContains(t, text, "icon")
}

func TestHTTPFetcherStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(srv.URL+"?q={query}", time.Second).Fetch(context.Background(), "curl")
	assert.Error(t, err)
}

func TestHTTPFetcherURL(t *testing.T) {
	f := NewHTTPFetcher("", time.Second)
	assert.Equal(t, "https://www.google.com/search?q=git+rebase", f.URL("git rebase"))
}

func TestHTMLTextLineLimit(t *testing.T) {
	text, err := htmlText(strings.NewReader(strings.Repeat("<p>x</p>", 50)), 10)
	require.NoError(t, err)
	assert.Len(t, strings.Split(text, "\n"), 10)
}
