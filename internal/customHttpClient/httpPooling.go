package customHttpClient

import (
	"net/http"
	"time"
)

const (
	maxIdleConns        = 50
	maxIdleConnsPerHost = 25
	idleConnTimeout     = 60 * time.Second
)

var pooledTransport = &http.Transport{
	MaxIdleConns:        maxIdleConns,
	MaxIdleConnsPerHost: maxIdleConnsPerHost,
	IdleConnTimeout:     idleConnTimeout,
}

// Pooled returns an http.Client with connection reuse tuned for the REST
// providers (the fallback completion tier); the gRPC clients pool on their own.
func Pooled() *http.Client {
	return &http.Client{Transport: pooledTransport}
}
