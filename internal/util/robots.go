// Package util holds the HTTP helpers shared by URL sources: proxy selection
// and robots.txt compliance.
package util

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
)

// robotsTTL is how long an origin's robots.txt is trusted
const robotsTTL = time.Hour

// RobotsVerdict is the robots.txt answer for one URL
type RobotsVerdict struct {
	Allowed    bool
	CrawlDelay time.Duration // zero when the site sets none
	Host       string
}

// RobotsChecker answers robots.txt questions for document URLs, fetching each
// origin's file at most once per robotsTTL
type RobotsChecker struct {
	policies   *gocache.Cache
	httpClient *http.Client
	userAgent  string
	agentToken string
}

// NewRobotsChecker creates a checker that fetches robots.txt through client
func NewRobotsChecker(userAgent string, client *http.Client) *RobotsChecker {
	return &RobotsChecker{
		policies:   gocache.New(robotsTTL, 10*time.Minute),
		httpClient: client,
		userAgent:  userAgent,
		agentToken: NormalizeUserAgent(userAgent),
	}
}

// Check reports whether rawURL may be fetched. An unreachable robots.txt
// allows the fetch.
func (r *RobotsChecker) Check(ctx context.Context, rawURL string) (RobotsVerdict, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return RobotsVerdict{}, fmt.Errorf("parse URL: %w", err)
	}
	verdict := RobotsVerdict{Allowed: true, Host: u.Host}

	data, err := r.policy(ctx, u)
	if err != nil {
		slog.Debug("robots.txt unavailable, allowing", "host", u.Host, "error", err)
		return verdict, nil
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	verdict.Allowed = data.TestAgent(path, r.agentToken)
	if group := data.FindGroup(r.agentToken); group != nil {
		verdict.CrawlDelay = group.CrawlDelay
	}
	return verdict, nil
}

// policy returns the parsed robots.txt of u's origin
func (r *RobotsChecker) policy(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	origin := strings.ToLower(u.Scheme + "://" + u.Host)
	if cached, found := r.policies.Get(origin); found {
		return cached.(*robotstxt.RobotsData), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// 4xx means allow-all and 5xx disallow-all
	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.policies.SetDefault(origin, data)
	return data, nil
}

// NormalizeUserAgent reduces a user agent such as "namecrawler/0.1 (+url)"
// to the product token robots.txt groups match against
func NormalizeUserAgent(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) == 0 {
		return ua
	}
	return strings.SplitN(parts[0], "/", 2)[0]
}
