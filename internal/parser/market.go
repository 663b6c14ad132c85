package parser

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/vendora/product-importer/internal/models"
)

// ErrTitleNotFound means no usable title could be extracted. This is the
// only extraction failure that aborts a scrape; pages behind an anti-bot
// challenge typically surface here.
var ErrTitleNotFound = errors.New("title not found or too short")

const (
	// DefaultMaxImages bounds the image list when no explicit cap is set.
	DefaultMaxImages = 15

	maxVideos      = 5
	maxAttributes  = 10
	minTitleLen    = 5
	minSpecTextLen = 10
	maxDetailsLen  = 1000

	priceMin = 0.0
	priceMax = 10000.0
)

// MarketParser extracts product data from AliExpress and Alibaba product
// pages. Meta tags are read through a DOM query; the embedded JSON blobs and
// price/media candidates are matched directly against the raw HTML, since
// those fragments live inside script bodies the DOM does not expose.
type MarketParser struct {
	maxImages int

	titleSuffixPatterns []*regexp.Regexp
	titlePipePattern    *regexp.Regexp
	pricePatterns       []*regexp.Regexp
	skuPropsPattern     *regexp.Regexp
	specBlockPattern    *regexp.Regexp
	tagPattern          *regexp.Regexp
	spacePattern        *regexp.Regexp
	attrPairPattern     *regexp.Regexp
	imagePathPattern    *regexp.Regexp
	galleryPattern      *regexp.Regexp
	quotedPattern       *regexp.Regexp
	cdnImagePattern     *regexp.Regexp
	videoModulePattern  *regexp.Regexp
	mp4Pattern          *regexp.Regexp
}

// NewMarketParser builds a parser with the given image cap. A cap of zero
// or less falls back to DefaultMaxImages.
func NewMarketParser(maxImages int) *MarketParser {
	if maxImages <= 0 {
		maxImages = DefaultMaxImages
	}
	return &MarketParser{
		maxImages: maxImages,
		titleSuffixPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)-\s*AliExpress.*$`),
			regexp.MustCompile(`(?i)-\s*Alibaba.*$`),
		},
		titlePipePattern: regexp.MustCompile(`\|.*$`),
		pricePatterns: []*regexp.Regexp{
			regexp.MustCompile(`\$\s*([\d,]+\.?\d*)`),
			regexp.MustCompile(`(?i)USD\s*([\d,]+\.?\d*)`),
			regexp.MustCompile(`(?i)"minPrice":\s*"?([\d.]+)`),
			regexp.MustCompile(`(?i)"formatedActivityPrice":\s*"[^"]*\$\s*([\d.]+)`),
			regexp.MustCompile(`(?i)"formatedPrice":\s*"[^"]*\$\s*([\d.]+)`),
		},
		skuPropsPattern:    regexp.MustCompile(`"skuPropertyList":\s*(\[[^\]]+\])`),
		specBlockPattern:   regexp.MustCompile(`(?is)<div[^>]*class="[^"]*specification[^"]*"[^>]*>(.*?)</div>`),
		tagPattern:         regexp.MustCompile(`<[^>]+>`),
		spacePattern:       regexp.MustCompile(`\s+`),
		attrPairPattern:    regexp.MustCompile(`(?i)"attrName":\s*"([^"]+)",\s*"attrValue":\s*"([^"]+)"`),
		imagePathPattern:   regexp.MustCompile(`"imagePathList":\s*\[([^\]]+)\]`),
		galleryPattern:     regexp.MustCompile(`"galleryUrls":\s*\[([^\]]+)\]`),
		quotedPattern:      regexp.MustCompile(`"([^"]+)"`),
		cdnImagePattern:    regexp.MustCompile(`(?i)https?://[^"'\s<>]+(?:alicdn|ae01|cbu01)[^"'\s<>]+\.(?:jpg|jpeg|png|webp)`),
		videoModulePattern: regexp.MustCompile(`"videoModule":\s*(\{[^}]+\})`),
		mp4Pattern:         regexp.MustCompile(`(?i)https?://[^"'\s<>]+\.mp4`),
	}
}

// ParseProductPage runs every field extractor over the same HTML and
// assembles the result. It fails only when no valid title is found.
func (p *MarketParser) ParseProductPage(html string) (*models.ScrapedProduct, error) {
	title, err := p.ExtractTitle(html)
	if err != nil {
		return nil, err
	}

	details, attributes := p.ExtractDetails(html)

	return &models.ScrapedProduct{
		Title:       title,
		Description: p.ExtractDescription(html),
		Details:     details,
		Attributes:  attributes,
		Price:       p.ExtractPrice(html),
		Images:      p.ExtractImages(html),
		Videos:      p.ExtractVideos(html),
		ScrapedAt:   time.Now(),
	}, nil
}

// ExtractTitle tries the og:title meta tag first and falls back to the
// document title element. Marketplace suffixes are stripped in both cases;
// the pipe separator is only stripped on the fallback, where it usually
// carries the site name.
func (p *MarketParser) ExtractTitle(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	var title string
	if content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		title = p.cleanTitle(content, false)
	}
	if title == "" {
		title = p.cleanTitle(doc.Find("title").First().Text(), true)
	}

	if utf8.RuneCountInString(title) < minTitleLen {
		return "", ErrTitleNotFound
	}
	return title, nil
}

func (p *MarketParser) cleanTitle(raw string, stripPipe bool) string {
	for _, pattern := range p.titleSuffixPatterns {
		raw = pattern.ReplaceAllString(raw, "")
	}
	if stripPipe {
		raw = p.titlePipePattern.ReplaceAllString(raw, "")
	}
	return strings.TrimSpace(raw)
}

// ExtractDescription reads the description or og:description meta tag.
// There is no fallback chain; absence yields an empty string.
func (p *MarketParser) ExtractDescription(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	content, _ := doc.Find(`meta[name="description"], meta[property="og:description"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

type skuPropertyValue struct {
	PropertyValueDisplayName string `json:"propertyValueDisplayName"`
}

type skuProperty struct {
	SkuPropertyName   string             `json:"skuPropertyName"`
	SkuPropertyValues []skuPropertyValue `json:"skuPropertyValues"`
}

// ExtractDetails collects the free-text specification block and the
// attribute map. The sku property JSON is tried first; the HTML
// specification fragments only when that yields nothing; the attribute pair
// scan always runs and backfills details as a last resort. The ordering
// matters: later steps check whether earlier ones produced anything.
func (p *MarketParser) ExtractDetails(html string) (string, map[string]string) {
	var details string

	if m := p.skuPropsPattern.FindStringSubmatch(html); m != nil {
		var props []skuProperty
		// A truncated or malformed blob just means this source has nothing.
		if err := json.Unmarshal([]byte(m[1]), &props); err == nil {
			var lines []string
			for _, prop := range props {
				if prop.SkuPropertyName == "" || len(prop.SkuPropertyValues) == 0 {
					continue
				}
				values := make([]string, 0, len(prop.SkuPropertyValues))
				for _, v := range prop.SkuPropertyValues {
					values = append(values, v.PropertyValueDisplayName)
				}
				lines = append(lines, prop.SkuPropertyName+": "+strings.Join(values, ", "))
			}
			details = strings.Join(lines, "\n")
		}
	}

	if details == "" {
		if blocks := p.specBlockPattern.FindAllString(html, -1); blocks != nil {
			text := p.tagPattern.ReplaceAllString(strings.Join(blocks, " "), " ")
			text = strings.TrimSpace(p.spacePattern.ReplaceAllString(text, " "))
			if utf8.RuneCountInString(text) > minSpecTextLen {
				details = truncateRunes(text, maxDetailsLen)
			}
		}
	}

	attributes := make(map[string]string)
	var attrOrder []string
	for _, m := range p.attrPairPattern.FindAllStringSubmatch(html, -1) {
		if len(attributes) >= maxAttributes {
			break
		}
		if _, seen := attributes[m[1]]; !seen {
			attrOrder = append(attrOrder, m[1])
		}
		attributes[m[1]] = m[2]
	}

	if details == "" && len(attributes) > 0 {
		lines := make([]string, 0, len(attrOrder))
		for _, key := range attrOrder {
			lines = append(lines, key+": "+attributes[key])
		}
		details = strings.Join(lines, "\n")
	}

	return details, attributes
}

// ExtractPrice tries a fixed list of patterns and returns the first value
// inside the plausible retail range. Several of the patterns also match SKU
// ids and shipping weights, so out-of-range hits are treated as false
// positives and the chain moves on. Zero means undetected.
func (p *MarketParser) ExtractPrice(html string) float64 {
	for _, pattern := range p.pricePatterns {
		m := pattern.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		if value > priceMin && value < priceMax {
			return value
		}
	}
	return 0
}

// ExtractImages aggregates image URLs from the og:image meta tags, the
// imagePathList and galleryUrls JSON arrays, and finally a broad CDN scan.
// The scan is the noisiest source and runs last so that the
// higher-confidence sources claim their slots first. The list is
// deduplicated by exact string, keeps first-seen order and is capped.
func (p *MarketParser) ExtractImages(html string) []string {
	images := make([]string, 0, p.maxImages)

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		doc.Find(`meta[property="og:image"], meta[property="og:image:url"]`).Each(func(_ int, s *goquery.Selection) {
			if content, ok := s.Attr("content"); ok {
				images = appendBounded(images, content, p.maxImages)
			}
		})
	}

	for _, pattern := range []*regexp.Regexp{p.imagePathPattern, p.galleryPattern} {
		m := pattern.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		for _, entry := range p.quotedPattern.FindAllStringSubmatch(m[1], -1) {
			clean := strings.ReplaceAll(entry[1], `\`, "")
			if strings.HasPrefix(clean, "http") {
				images = appendBounded(images, clean, p.maxImages)
			}
		}
	}

	for _, url := range p.cdnImagePattern.FindAllString(html, -1) {
		if isSmallOrAvatarImage(url) {
			continue
		}
		images = appendBounded(images, url, p.maxImages)
	}

	return images
}

type videoModule struct {
	VideoURL string `json:"videoUrl"`
}

// ExtractVideos collects video URLs from the videoModule JSON blob and from
// literal .mp4 URLs anywhere in the document, deduplicated and capped.
func (p *MarketParser) ExtractVideos(html string) []string {
	videos := make([]string, 0, maxVideos)

	if m := p.videoModulePattern.FindStringSubmatch(html); m != nil {
		var module videoModule
		if err := json.Unmarshal([]byte(m[1]), &module); err == nil && module.VideoURL != "" {
			videos = appendBounded(videos, module.VideoURL, maxVideos)
		}
	}

	// Some pages only expose a videoId/videoUid pair. No reliable CDN URL
	// construction for those ids is known, so they are skipped.

	for _, url := range p.mp4Pattern.FindAllString(html, -1) {
		videos = appendBounded(videos, url, maxVideos)
	}

	return videos
}

func appendBounded(list []string, value string, max int) []string {
	if value == "" || len(list) >= max {
		return list
	}
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

func isSmallOrAvatarImage(url string) bool {
	for _, marker := range []string{"avatar", "icon", "50x50", "100x100"} {
		if strings.Contains(url, marker) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
