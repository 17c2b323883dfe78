package util

import (
	"net/http"
	"net/url"
)

// NewTransport returns an HTTP transport that also serves file:// URLs from
// the local filesystem and routes through the given proxies. Empty proxy
// settings fall back to the HTTP_PROXY family of environment variables.
func NewTransport(httpProxy, httpsProxy string) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.Proxy = proxyFunc(httpProxy, httpsProxy)
	t.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))
	return t
}

func proxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
