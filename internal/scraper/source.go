package scraper

import (
	"net/url"
	"strings"

	"github.com/vendora/product-importer/internal/models"
)

// ClassifySource decides which marketplace a URL belongs to by looking at
// its host. Anything that is not AliExpress or Alibaba is unknown and must
// be rejected before any network call is made.
func ClassifySource(rawURL string) models.SourcePlatform {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return models.SourceUnknown
	}

	host := strings.ToLower(parsed.Host)
	switch {
	case strings.Contains(host, "aliexpress.com"):
		return models.SourceAliExpress
	case strings.Contains(host, "alibaba.com"):
		return models.SourceAlibaba
	default:
		return models.SourceUnknown
	}
}
