package customHttpClient

import (
	"net/http"

	"github.com/akolanti/DocQA/internal/config"
)

// one pooled transport for every provider SDK so connections to the same host are reused
var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

var pooledClient = &http.Client{Transport: customTransport}

// Client returns the shared pooled client. Per-call deadlines come from the request context.
func Client() *http.Client {
	return pooledClient
}
