package utils

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"s3-resources/pkg/code"
	"s3-resources/pkg/e"
)

// DefaultFetchTimeout 单次下载超时
const DefaultFetchTimeout = 30 * time.Second

// HTTPFetcher 通过 HTTP GET 拉取资源字节
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher timeout <= 0 时使用 DefaultFetchTimeout
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
		},
	}
}

// Fetch GET 并返回 Body；非 2xx 或网络异常都返回 FetchError
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, e.New(code.FetchError, fmt.Sprintf("invalid url %q", url), err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, e.New(code.FetchError, fmt.Sprintf("GET %s", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, e.New(code.FetchError, fmt.Sprintf("GET %s: http status %d", url, resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, e.New(code.FetchError, fmt.Sprintf("read body of %s", url), err)
	}
	return body, nil
}
