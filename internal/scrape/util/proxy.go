package util

import "net/url"

// Proxy routes fetches through a scraping-API service (ScraperAPI-style:
// GET <endpoint>?api_key=K&url=<target>). Nil means direct fetching.
type Proxy struct {
	Endpoint string
	APIKey   string
}

// Wrap rewrites target to go through the proxy endpoint. On a bad endpoint
// it falls back to the direct URL.
func (p *Proxy) Wrap(target string) string {
	if p == nil || p.Endpoint == "" {
		return target
	}
	u, err := url.Parse(p.Endpoint)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set("api_key", p.APIKey)
	q.Set("url", target)
	u.RawQuery = q.Encode()
	return u.String()
}
