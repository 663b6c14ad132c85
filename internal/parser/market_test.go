package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTitle(t *testing.T) {
	p := NewMarketParser(0)

	tests := []struct {
		name     string
		html     string
		expected string
		hasError bool
	}{
		{
			name:     "og:title with AliExpress suffix",
			html:     `<html><head><meta property="og:title" content="Red Dress - AliExpress.com"></head></html>`,
			expected: "Red Dress",
		},
		{
			name:     "og:title with Alibaba suffix",
			html:     `<html><head><meta property="og:title" content="Bolso de Cuero - Alibaba Wholesale"></head></html>`,
			expected: "Bolso de Cuero",
		},
		{
			name:     "case insensitive suffix",
			html:     `<html><head><meta property="og:title" content="Blue Hat - ALIEXPRESS"></head></html>`,
			expected: "Blue Hat",
		},
		{
			name:     "title element fallback strips pipe",
			html:     `<html><head><title>Zapatos Deportivos | Tienda Online</title></head></html>`,
			expected: "Zapatos Deportivos",
		},
		{
			name:     "og:title keeps pipe",
			html:     `<html><head><meta property="og:title" content="Reloj Inteligente | Resistente"></head></html>`,
			expected: "Reloj Inteligente | Resistente",
		},
		{
			name:     "too short after cleanup",
			html:     `<html><head><title>x</title></head></html>`,
			hasError: true,
		},
		{
			name:     "no title at all",
			html:     `<html><body><p>nothing here</p></body></html>`,
			hasError: true,
		},
		{
			name:     "suffix-only og:title falls back to title element",
			html:     `<html><head><meta property="og:title" content="- AliExpress.com"><title>Camisa de Lino - Alibaba.com</title></head></html>`,
			expected: "Camisa de Lino",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, err := p.ExtractTitle(tt.html)

			if tt.hasError {
				assert.ErrorIs(t, err, ErrTitleNotFound)
				assert.Empty(t, title)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, title)
			}
		})
	}
}

func TestExtractDescription(t *testing.T) {
	p := NewMarketParser(0)

	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "meta description",
			html:     `<head><meta name="description" content="  Un producto excelente  "></head>`,
			expected: "Un producto excelente",
		},
		{
			name:     "og:description",
			html:     `<head><meta property="og:description" content="Nice hat"></head>`,
			expected: "Nice hat",
		},
		{
			name:     "absent yields empty",
			html:     `<head><title>Algo</title></head>`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.ExtractDescription(tt.html))
		})
	}
}

func TestExtractPrice(t *testing.T) {
	p := NewMarketParser(0)

	tests := []struct {
		name     string
		html     string
		expected float64
	}{
		{"dollar sign", `<span>$49.99</span>`, 49.99},
		{"dollar with thousands separator", `<span>$1,299.99</span>`, 1299.99},
		{"usd prefix", `<span>usd 25.50</span>`, 25.5},
		{"minPrice field", `{"minPrice": "8.99"}`, 8.99},
		{"formatedActivityPrice field", `{"formatedActivityPrice": "US $7.99"}`, 7.99},
		{"out of range rejected", `<span>$15000</span>`, 0},
		{"zero rejected", `<span>$0</span>`, 0},
		{"nothing found", `<span>sin precio</span>`, 0},
		{"first pattern wins", `<span>$12.00</span> {"minPrice": "5.00"}`, 12.0},
		{"out of range falls through to next pattern", `<span>$99999</span> {"minPrice": "5.00"}`, 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.ExtractPrice(tt.html))
		})
	}
}

func TestExtractDetailsFromSpecificationBlocks(t *testing.T) {
	p := NewMarketParser(0)

	html := `<div class="product-specification block">
		<span>Material: Algodón</span>
		<span>Talla: M, L, XL</span>
	</div>`

	details, attrs := p.ExtractDetails(html)

	assert.Contains(t, details, "Material: Algodón")
	assert.Contains(t, details, "Talla: M, L, XL")
	assert.Empty(t, attrs)
}

func TestExtractDetailsSpecificationTooShort(t *testing.T) {
	p := NewMarketParser(0)

	details, _ := p.ExtractDetails(`<div class="specification">ok</div>`)
	assert.Empty(t, details)
}

func TestExtractDetailsTruncated(t *testing.T) {
	p := NewMarketParser(0)

	long := strings.Repeat("dato ", 400)
	details, _ := p.ExtractDetails(`<div class="specification">` + long + `</div>`)

	assert.LessOrEqual(t, len([]rune(details)), 1000)
	assert.NotEmpty(t, details)
}

func TestExtractDetailsMalformedSkuJSONIsSwallowed(t *testing.T) {
	p := NewMarketParser(0)

	// The sku property list always carries nested arrays, so the bracketed
	// capture is truncated and never valid JSON. That source yields nothing
	// and the later strategies still run.
	html := `"skuPropertyList": [{"skuPropertyName":"Color","skuPropertyValues":[{"propertyValueDisplayName":"Rojo"}]}]
	<div class="specification">Material: Cuero sintético de alta calidad</div>`

	details, _ := p.ExtractDetails(html)
	assert.Contains(t, details, "Material: Cuero sintético")
}

func TestExtractAttributesCap(t *testing.T) {
	p := NewMarketParser(0)

	var sb strings.Builder
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&sb, `{"attrName": "clave%02d", "attrValue": "valor%02d"}`, i, i)
	}

	_, attrs := p.ExtractDetails(sb.String())

	require.Len(t, attrs, 10)
	for i := 0; i < 10; i++ {
		assert.Equal(t, fmt.Sprintf("valor%02d", i), attrs[fmt.Sprintf("clave%02d", i)])
	}
}

func TestExtractDetailsFallsBackToAttributes(t *testing.T) {
	p := NewMarketParser(0)

	html := `{"attrName": "Marca", "attrValue": "Genérica"} {"attrName": "Origen", "attrValue": "CN"}`

	details, attrs := p.ExtractDetails(html)

	assert.Equal(t, "Marca: Genérica\nOrigen: CN", details)
	assert.Len(t, attrs, 2)
}

func TestExtractImagesDedupAndCap(t *testing.T) {
	p := NewMarketParser(15)

	var sb strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, `<img src="https://ae01.alicdn.com/kf/item%02d.jpg">`, i)
	}

	images := p.ExtractImages(sb.String())

	require.Len(t, images, 15)
	for i, url := range images {
		assert.Equal(t, fmt.Sprintf("https://ae01.alicdn.com/kf/item%02d.jpg", i), url)
	}
}

func TestExtractImagesOgFirstThenCDNScanDeduped(t *testing.T) {
	p := NewMarketParser(0)

	html := `<head>
		<meta property="og:image" content="https://ae01.alicdn.com/kf/main.jpg">
	</head>
	<body>
		<img src="https://ae01.alicdn.com/kf/main.jpg">
		<img src="https://ae01.alicdn.com/kf/extra.png">
	</body>`

	images := p.ExtractImages(html)

	require.Len(t, images, 2)
	assert.Equal(t, "https://ae01.alicdn.com/kf/main.jpg", images[0])
	assert.Equal(t, "https://ae01.alicdn.com/kf/extra.png", images[1])
}

func TestExtractImagesFromImagePathList(t *testing.T) {
	p := NewMarketParser(0)

	html := `{"imagePathList":["https:\/\/ae01.alicdn.com\/kf\/uno.jpg","https:\/\/ae01.alicdn.com\/kf\/dos.jpg","\/relative\/path.jpg"]}`

	images := p.ExtractImages(html)

	require.Len(t, images, 2)
	assert.Equal(t, "https://ae01.alicdn.com/kf/uno.jpg", images[0])
	assert.Equal(t, "https://ae01.alicdn.com/kf/dos.jpg", images[1])
}

func TestExtractImagesFiltersAvatarsAndThumbnails(t *testing.T) {
	p := NewMarketParser(0)

	html := `<img src="https://ae01.alicdn.com/kf/avatar-user.jpg">
	<img src="https://ae01.alicdn.com/kf/icon-star.png">
	<img src="https://ae01.alicdn.com/kf/pic_50x50.jpg">
	<img src="https://ae01.alicdn.com/kf/pic_100x100.jpg">
	<img src="https://ae01.alicdn.com/kf/producto.jpg">`

	images := p.ExtractImages(html)

	require.Len(t, images, 1)
	assert.Equal(t, "https://ae01.alicdn.com/kf/producto.jpg", images[0])
}

func TestExtractVideos(t *testing.T) {
	p := NewMarketParser(0)

	t.Run("video module url", func(t *testing.T) {
		videos := p.ExtractVideos(`{"videoModule": {"videoUrl": "https://cloud.video.example.com/play.mp4"}}`)
		require.Len(t, videos, 1)
		assert.Equal(t, "https://cloud.video.example.com/play.mp4", videos[0])
	})

	t.Run("malformed video module is swallowed", func(t *testing.T) {
		videos := p.ExtractVideos(`{"videoModule": {"videoUrl": broken}}`)
		assert.Empty(t, videos)
	})

	t.Run("mp4 scan with cap", func(t *testing.T) {
		var sb strings.Builder
		for i := 0; i < 7; i++ {
			fmt.Fprintf(&sb, `<source src="https://video.example.com/clip%d.mp4">`, i)
		}
		videos := p.ExtractVideos(sb.String())
		assert.Len(t, videos, 5)
	})
}

func TestParseProductPage(t *testing.T) {
	p := NewMarketParser(0)

	html := `<html><head>
		<meta property="og:title" content="Blue Hat - AliExpress">
		<meta property="og:description" content="Nice hat">
		<meta property="og:image" content="https://ae01.alicdn.com/kf/hat1.jpg">
		<meta property="og:image" content="https://ae01.alicdn.com/kf/hat2.jpg">
	</head><body>
		<span class="price">$12.50</span>
		{"attrName": "Material", "attrValue": "Lana"}
	</body></html>`

	product, err := p.ParseProductPage(html)
	require.NoError(t, err)

	assert.Equal(t, "Blue Hat", product.Title)
	assert.Equal(t, "Nice hat", product.Description)
	assert.Equal(t, 12.50, product.Price)
	assert.Equal(t, []string{
		"https://ae01.alicdn.com/kf/hat1.jpg",
		"https://ae01.alicdn.com/kf/hat2.jpg",
	}, product.Images)
	assert.Equal(t, map[string]string{"Material": "Lana"}, product.Attributes)
	assert.Equal(t, "Material: Lana", product.Details)
	assert.Empty(t, product.Videos)
}

func TestParseProductPageFailsWithoutTitle(t *testing.T) {
	p := NewMarketParser(0)

	html := `<html><head><title>ab</title></head><body>
		<span>$20.00</span>
		<meta property="og:image" content="https://ae01.alicdn.com/kf/x.jpg">
	</body></html>`

	product, err := p.ParseProductPage(html)
	assert.ErrorIs(t, err, ErrTitleNotFound)
	assert.Nil(t, product)
}
