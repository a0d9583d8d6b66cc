package fetch_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/veracity/internal/fetch"
)

const articleHTML = `<!DOCTYPE html>
<html><head>
<title>Council approves budget</title>
<meta property="og:image" content="/images/council.jpg">
</head><body>
<nav>Home | News | Sports</nav>
<article>
<h1>Council approves budget</h1>
<p>The city council voted on Tuesday to approve the annual budget after a lengthy debate about road repairs and transit funding in the downtown core.</p>
<p>According to officials, the budget increases spending on public transit by four percent and sets aside money for repairing bridges across the region.</p>
<p>Several councillors raised concerns about the property tax increase, but the motion passed with a clear majority of members voting in favour.</p>
<p>The mayor said the plan balances the needs of a growing population with the long term health of the city finances, and promised regular public updates.</p>
<p>Residents will be able to comment on the spending priorities at three open houses scheduled for next month at libraries in the north, east and west ends.</p>
</article>
<footer>Copyright</footer>
</body></html>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Veracity")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articleHTML))
	})
	mux.HandleFunc("/image.png", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte{7}, 64))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchArticle(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	f := fetch.New(fetch.Config{Enabled: true}, nil)

	article, err := f.FetchArticle(context.Background(), srv.URL+"/article")
	require.NoError(t, err)

	assert.Contains(t, article.Text, "city council voted on Tuesday")
	assert.Equal(t, srv.URL+"/images/council.jpg", article.ImageURL)
	assert.NotEmpty(t, article.Title)
}

func TestFetchImage(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	f := fetch.New(fetch.Config{Enabled: true}, nil)

	data, err := f.FetchImage(context.Background(), srv.URL+"/image.png")
	require.NoError(t, err)
	assert.Len(t, data, 64)
}

func TestFetchImage_TooLarge(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	f := fetch.New(fetch.Config{Enabled: true, MaxBytes: 32}, nil)

	_, err := f.FetchImage(context.Background(), srv.URL+"/image.png")
	require.ErrorIs(t, err, fetch.ErrTooLarge)
}

func TestFetch_Errors(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	ctx := context.Background()

	_, err := fetch.New(fetch.Config{}, nil).FetchImage(ctx, srv.URL+"/image.png")
	require.ErrorIs(t, err, fetch.ErrDisabled)

	f := fetch.New(fetch.Config{Enabled: true}, nil)
	for _, raw := range []string{"ftp://example.com/x", "not a url", "/relative"} {
		_, err = f.FetchImage(ctx, raw)
		require.ErrorIs(t, err, fetch.ErrInvalidURL, raw)
	}

	_, err = f.FetchArticle(ctx, srv.URL+"/missing")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "404"))
}
