package browser

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cardsPage = `<!doctype html>
<html>
<head>
<style>
  body { margin: 0; font: 14px sans-serif; }
  .ui.card { display: block; width: 300px; height: 200px; margin: 10px; box-sizing: border-box; }
  .card-summary-content { width: 280px; height: 50px; overflow: hidden; }
</style>
</head>
<body>
  <div class="ui card">
    <div class="summary card-summary-content">short</div>
    <a href="/test-summaries/first/">Read more</a>
  </div>
  <div class="ui card">
    <div class="summary card-summary-content"><div style="height: 400px">tall</div></div>
  </div>
  <div class="ui card" style="height: 230px">
    <div class="summary">missing marker class</div>
  </div>
  <iframe srcdoc="<p>embedded</p>" width="100" height="50"></iframe>
</body>
</html>`

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func skipIfNoChrome(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("short mode, skipping browser test")
	}

	path, err := FindExecutable("")
	if err != nil {
		t.Skip("chrome not available, skipping browser test")
	}

	return path
}

func TestChrome_MeasuresRenderedCards(t *testing.T) {
	execPath := skipIfNoChrome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(cardsPage))
	}))
	defer srv.Close()

	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	c := NewChrome(log, Options{
		ExecPath:          execPath,
		Headless:          true,
		ViewportWidth:     1024,
		ViewportHeight:    768,
		NavigationTimeout: 20 * time.Second,
	})
	require.NoError(t, c.Open(ctx))
	defer func() { require.NoError(t, c.Close()) }()

	require.NoError(t, c.Navigate(ctx, srv.URL+"/test-summaries/"))

	m, err := c.Measure(ctx, Selectors{
		Card:        ".ui.card",
		Summary:     ".summary",
		ReadMore:    `a[href*="test-summaries"]`,
		MarkerClass: "card-summary-content",
	})
	require.NoError(t, err)
	require.Empty(t, m.CardsError)
	require.Empty(t, m.ClassesError)

	assert.Equal(t, []float64{200, 200, 230}, m.Heights())
	assert.Equal(t, []bool{true, false, false},
		[]bool{m.Cards[0].HasReadMore, m.Cards[1].HasReadMore, m.Cards[2].HasReadMore})

	require.NotNil(t, m.Cards[0].Summary)
	assert.False(t, m.Cards[0].Summary.Overflows())

	require.NotNil(t, m.Cards[1].Summary)
	assert.True(t, m.Cards[1].Summary.Overflows())
	assert.Equal(t, 50.0, m.Cards[1].Summary.ClientHeight)
	assert.GreaterOrEqual(t, m.Cards[1].Summary.ScrollHeight, 400.0)

	require.NotNil(t, m.Cards[2].Summary)
	assert.False(t, m.Cards[2].Summary.Overflows())

	assert.Equal(t, 3, m.Classes.Matched)
	assert.Equal(t, 2, m.Classes.WithClass)

	shot, err := c.Screenshot(ctx)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(shot, pngMagic), "screenshot is a PNG")

	outlined, err := c.Annotate(ctx, ".ui.card")
	require.NoError(t, err)
	assert.Equal(t, 3, outlined)

	annotated, err := c.Screenshot(ctx)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(annotated, pngMagic))
	assert.NotEqual(t, shot, annotated, "borders change the rendering")
}

func TestChrome_NavigateErrorsOnUnreachableHost(t *testing.T) {
	execPath := skipIfNoChrome(t)

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	c := NewChrome(log, Options{ExecPath: execPath, Headless: true, NavigationTimeout: 10 * time.Second})
	require.NoError(t, c.Open(ctx))
	defer func() { _ = c.Close() }()

	err := c.Navigate(ctx, url+"/test-summaries/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "navigating to")
}
