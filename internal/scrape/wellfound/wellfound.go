package wellfound

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/scrape/types"
	"leadscout-engine/internal/scrape/util"
)

type Config struct {
	BaseURL  string
	MaxPages int
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.Limiter
	rotator *util.Rotator
	hosts   *util.HostLimiter
	proxy   *util.Proxy
}

func New(cfg Config, limiter *util.Limiter, rotator *util.Rotator, proxy *util.Proxy) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://wellfound.com"
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 3
	}
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
		rotator: rotator,
		hosts:   util.NewHostLimiter(1.0, 2),
		proxy:   proxy,
	}
}

func (s *Scraper) Name() string          { return "wellfound" }
func (s *Scraper) Source() domain.Source { return domain.SourceWellfound }

// jobPathRe matches listing links like /jobs/2811034-data-scientist.
var jobPathRe = regexp.MustCompile(`/jobs/(\d+)[^/"]*$`)

func (s *Scraper) Fetch(ctx context.Context, q types.Query) ([]types.RawLead, error) {
	var out []types.RawLead
	seen := map[string]bool{}

	for page := 1; page <= s.cfg.MaxPages; page++ {
		if q.MaxResults > 0 && len(out) >= q.MaxResults {
			break
		}

		pageURL := fmt.Sprintf("%s/role/l/%s/%s?page=%d",
			s.cfg.BaseURL, util.Slugify(q.Role), util.Slugify(q.Location), page)

		doc, err := s.get(ctx, pageURL)
		if err != nil {
			if len(out) > 0 {
				return out, nil
			}
			return nil, err
		}

		cards := doc.Find(`div[data-test="StartupResult"]`)
		if cards.Length() == 0 {
			if page == 1 {
				return nil, fmt.Errorf("wellfound: no startup results for %q: %w", q.Role, types.ErrParse)
			}
			break
		}

		cards.Each(func(_ int, card *goquery.Selection) {
			company := strings.TrimSpace(card.Find(`h2[data-test="startup-name"]`).First().Text())
			if company == "" {
				company = strings.TrimSpace(card.Find("h2").First().Text())
			}
			pitch := strings.TrimSpace(card.Find(`span[data-test="startup-pitch"]`).First().Text())

			card.Find(`a[href*="/jobs/"]`).Each(func(_ int, a *goquery.Selection) {
				if q.MaxResults > 0 && len(out) >= q.MaxResults {
					return
				}
				href, ok := a.Attr("href")
				if !ok {
					return
				}
				m := jobPathRe.FindStringSubmatch(href)
				if m == nil || seen[m[1]] {
					return
				}
				seen[m[1]] = true

				abs := href
				if strings.HasPrefix(href, "/") {
					abs = s.cfg.BaseURL + href
				}

				out = append(out, types.RawLead{
					Source:      domain.SourceWellfound,
					SourceJobID: m[1],
					Title:       strings.TrimSpace(a.Find(`span[data-test="job-title"]`).First().Text()),
					Company:     company,
					Location:    strings.TrimSpace(card.Find(`span[data-test="job-location"]`).First().Text()),
					Summary:     pitch,
					DatePosted:  strings.TrimSpace(card.Find(`span[data-test="job-posted-date"]`).First().Text()),
					URL:         abs,
					Role:        q.Role,
				})
			})
		})
	}
	return out, nil
}

func (s *Scraper) get(ctx context.Context, target string) (*goquery.Document, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("wellfound: %w", err)
	}
	if err := s.hosts.WaitURL(ctx, target); err != nil {
		return nil, fmt.Errorf("wellfound: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.proxy.Wrap(target), nil)
	if err != nil {
		return nil, fmt.Errorf("wellfound: build request: %w", err)
	}
	req.Header.Set("User-Agent", s.rotator.Next())
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wellfound: get %s: %v: %w", target, err, types.ErrTransient)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("wellfound: read body: %v: %w", err, types.ErrTransient)
	}
	if cerr := types.ClassifyResponse(res.StatusCode, sample(body)); cerr != nil {
		return nil, fmt.Errorf("wellfound: %w", cerr)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("wellfound: parse html: %w", types.ErrParse)
	}
	return doc, nil
}

func sample(body []byte) string {
	const n = 2048
	if len(body) > n {
		body = body[:n]
	}
	return string(body)
}
