package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vendora/product-importer/internal/models"
)

func TestClassifySource(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected models.SourcePlatform
	}{
		{"aliexpress item", "https://www.aliexpress.com/item/100500.html", models.SourceAliExpress},
		{"aliexpress regional subdomain", "https://es.aliexpress.com/item/100500.html", models.SourceAliExpress},
		{"alibaba product", "https://www.alibaba.com/product-detail/widget.html", models.SourceAlibaba},
		{"amazon", "https://www.amazon.com/dp/B000", models.SourceUnknown},
		{"aliexpress only in path", "https://evil.example.com/aliexpress.com/item", models.SourceUnknown},
		{"empty", "", models.SourceUnknown},
		{"garbage", "://not-a-url", models.SourceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifySource(tt.url))
			// Classification is pure; a second call must agree.
			assert.Equal(t, tt.expected, ClassifySource(tt.url))
		})
	}
}
