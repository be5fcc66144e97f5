package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<html><head><script>var x = 1;</script></head><body>
<nav>Site nav</nav>
<article><p>The river rose quickly after the storm.</p></article>
<footer>Copyright</footer>
</body></html>`

func TestURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	result, err := URL(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.HTML, "river rose")
	assert.Contains(t, result.ContentType, "text/html")
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not a url", nil)
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Message, "invalid URL")
}

func TestURL_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	result, err := URL(context.Background(), srv.URL, nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
}

func TestURL_SetsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	_, err := URL(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestArticle_ExtractsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	result, err := Article(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "The river rose quickly after the storm.")
	assert.NotContains(t, result.Text, "Site nav")
	assert.NotContains(t, result.Text, "Copyright")
}
