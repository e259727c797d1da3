package indeed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadscout-engine/internal/scrape/types"
	"leadscout-engine/internal/scrape/util"
)

func card(jk, title, company, location, snippet string) string {
	return fmt.Sprintf(`
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a href="/viewjob?jk=%s"><span title="%s">%s</span></a></h2>
  <span data-testid="company-name">%s</span>
  <div data-testid="text-location">%s</div>
  <div class="job-snippet">%s</div>
  <span class="date">Posted 3 days ago</span>
</div>`, jk, title, title, company, location, snippet)
}

func page(cards ...string) string {
	body := ""
	for _, c := range cards {
		body += c
	}
	return "<html><body>" + body + "</body></html>"
}

func newTestScraper(t *testing.T, h http.HandlerFunc, maxPages int) *Scraper {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	rot, err := util.NewSeededRotator([]string{"test-agent"}, 1)
	require.NoError(t, err)
	return New(
		Config{BaseURL: srv.URL, MaxPages: maxPages},
		util.NewLimiter(10000, 0, 0),
		rot,
		nil,
	)
}

func TestFetchParsesCards(t *testing.T) {
	s := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "Data Scientist", r.URL.Query().Get("q"))
		assert.Equal(t, "Austin, TX", r.URL.Query().Get("l"))
		if r.URL.Query().Get("start") != "0" {
			fmt.Fprint(w, page()) // no more cards
			return
		}
		fmt.Fprint(w, page(
			card("abc123", "Data Scientist", "Acme", "Austin, TX", "Build models"),
			card("def456", "Senior Data Scientist", "Initech", "Remote", "Lead the team"),
		))
	}, 2)

	leads, err := s.Fetch(context.Background(), types.Query{Role: "Data Scientist", Location: "Austin, TX"})
	require.NoError(t, err)
	require.Len(t, leads, 2)

	assert.Equal(t, "abc123", leads[0].SourceJobID)
	assert.Equal(t, "Data Scientist", leads[0].Title)
	assert.Equal(t, "Acme", leads[0].Company)
	assert.Equal(t, "Austin, TX", leads[0].Location)
	assert.Equal(t, "Build models", leads[0].Summary)
	assert.Equal(t, "Posted 3 days ago", leads[0].DatePosted)
	assert.Contains(t, leads[0].URL, "/viewjob?jk=abc123")
	assert.Equal(t, "Data Scientist", leads[0].Role)
}

func TestFetchDeduplicatesByJobKey(t *testing.T) {
	s := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		// the same card appears on every page
		fmt.Fprint(w, page(card("abc123", "Data Scientist", "Acme", "Austin, TX", "x")))
	}, 3)

	leads, err := s.Fetch(context.Background(), types.Query{Role: "Data Scientist"})
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}

func TestFetchHonorsMaxResults(t *testing.T) {
	s := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		start := r.URL.Query().Get("start")
		fmt.Fprint(w, page(
			card("a-"+start, "Data Scientist", "Acme", "Austin, TX", "x"),
			card("b-"+start, "Data Scientist", "Initech", "Austin, TX", "x"),
		))
	}, 5)

	leads, err := s.Fetch(context.Background(), types.Query{Role: "Data Scientist", MaxResults: 3})
	require.NoError(t, err)
	assert.Len(t, leads, 3)
}

func TestFetchFirstPageWithoutCardsIsParseFailure(t *testing.T) {
	s := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>nothing here</p></body></html>")
	}, 2)

	_, err := s.Fetch(context.Background(), types.Query{Role: "Data Scientist"})
	require.ErrorIs(t, err, types.ErrParse)
}

func TestFetchKeepsEarlierPagesOnLaterFailure(t *testing.T) {
	s := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") == "0" {
			fmt.Fprint(w, page(card("abc123", "Data Scientist", "Acme", "Austin, TX", "x")))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}, 3)

	leads, err := s.Fetch(context.Background(), types.Query{Role: "Data Scientist"})
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}

func TestFetchStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"forbidden", http.StatusForbidden, "", types.ErrBlocked},
		{"rate limited", http.StatusTooManyRequests, "", types.ErrRateLimited},
		{"server error", http.StatusBadGateway, "", types.ErrTransient},
		{"challenge page", http.StatusOK, "please verify you are human", types.ErrBlocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}, 1)
			_, err := s.Fetch(context.Background(), types.Query{Role: "Data Scientist"})
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFetchRespectsContextCancel(t *testing.T) {
	s := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		fmt.Fprint(w, page(card("abc123", "Data Scientist", "Acme", "Austin, TX", "x")))
	}, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := s.Fetch(ctx, types.Query{Role: "Data Scientist"})
	require.Error(t, err)
}
