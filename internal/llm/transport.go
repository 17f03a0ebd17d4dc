package llm

import (
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"
)

// newProxyFunc layers explicit proxy settings over HTTP_PROXY, HTTPS_PROXY
// and NO_PROXY from the environment. Loopback hosts are never proxied.
func newProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	cfg := httpproxy.FromEnvironment()
	if httpProxy != "" {
		cfg.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.HTTPSProxy = httpsProxy
	}
	if noProxy != "" {
		cfg.NoProxy = noProxy
	}

	proxy := cfg.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return proxy(req.URL)
	}
}

// newHTTPClient builds the client shared by all providers. A zero timeout
// leaves deadlines to the request context.
func newHTTPClient(config Config, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: newProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}
}
