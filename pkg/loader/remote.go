package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Options tunes the HTTP client used by Remote.
type Options struct {
	RetryMax int           // defaults to 5 if <= 0
	Timeout  time.Duration // per attempt; 0 = no timeout
	Proxy    string        // optional proxy URL
	Log      Logger        // optional; nil = no logging
}

// Remote fetches datasets over HTTP, or from disk when a source is a plain
// path.
type Remote struct {
	sources Sources
	client  *retryablehttp.Client
	log     Logger
}

func NewRemote(sources Sources, opts Options) (*Remote, error) {
	log := opts.Log
	if log == nil {
		log = nopLogger{}
	}
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = leveled{log}
	retryClient.RetryMax = opts.RetryMax
	if retryClient.RetryMax <= 0 {
		retryClient.RetryMax = 5
	}
	retryClient.HTTPClient.Timeout = opts.Timeout

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %v", err)
		}
		retryClient.HTTPClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	return &Remote{sources: sources, client: retryClient, log: log}, nil
}

func (r *Remote) Sources() Sources { return r.sources }

// Observations downloads and decodes a CSV dataset.
func (r *Remote) Observations(ctx context.Context, d Dataset) (*Batch, error) {
	location := r.sources.Location(d)
	body, err := r.open(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", d, err)
	}
	defer body.Close()

	start := time.Now()
	batch, err := Decode(body, r.log)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", d, err)
	}
	r.log.Infof("Loaded %d %s rows from %s in %s", len(batch.Observations), d, location, time.Since(start).Round(time.Millisecond))
	return batch, nil
}

// Boundaries returns the raw GeoJSON document.
func (r *Remote) Boundaries(ctx context.Context) ([]byte, error) {
	body, err := r.open(ctx, r.sources.Boundaries)
	if err != nil {
		return nil, fmt.Errorf("fetching boundaries: %w", err)
	}
	defer body.Close()
	return io.ReadAll(body)
}

func (r *Remote) open(ctx context.Context, location string) (io.ReadCloser, error) {
	if location == "" {
		return nil, fmt.Errorf("no source configured")
	}
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		return os.Open(strings.TrimPrefix(location, "file://"))
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "covidscope")
	req.Header.Set("Cache-Control", "no-transform")
	req.Header.Set("Accept-Language", "en")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s from %s", resp.Status, location)
	}
	return resp.Body, nil
}

// leveled routes retryablehttp's structured messages to a Logger. Retries
// are worth a warning; per-request chatter stays at debug.
type leveled struct{ log Logger }

func (l leveled) Error(msg string, kv ...interface{}) { l.log.Warnf("%s%s", msg, fields(kv)) }
func (l leveled) Warn(msg string, kv ...interface{})  { l.log.Warnf("%s%s", msg, fields(kv)) }
func (l leveled) Info(msg string, kv ...interface{})  { l.log.Debugf("%s%s", msg, fields(kv)) }
func (l leveled) Debug(msg string, kv ...interface{}) { l.log.Debugf("%s%s", msg, fields(kv)) }

func fields(kv []interface{}) string {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	return b.String()
}
