package service

import (
	"strings"

	"github.com/meilisearch/meilisearch-go"
)

// NewClient returns nil when no host is configured. A bare hostname gets
// the default scheme and port.
func NewClient(host, apiKey string) meilisearch.ServiceManager {
	if host == "" {
		return nil
	}
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host + ":7700"
	}
	return meilisearch.New(host, meilisearch.WithAPIKey(apiKey))
}
