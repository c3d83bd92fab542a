// Package rendering turns model-produced resume HTML into safe fragments and
// printable PDF documents.
package rendering

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockedElements never survive sanitization.
const blockedElements = "script, iframe, frame, frameset, object, embed, applet, base, meta, link, title, noscript, form"

// urlAttributes are checked for script and data URLs.
var urlAttributes = []string{"href", "src", "action", "formaction", "xlink:href", "poster", "srcset", "background"}

// linkElements navigate rather than fetch, so their href may point anywhere
// except script or data URLs.
var linkElements = map[string]bool{"a": true, "area": true}

var (
	cssImport = regexp.MustCompile(`(?i)@import[^;]*;?`)
	cssURL    = regexp.MustCompile(`(?i)url\(\s*(['"]?)(.*?)['"]?\s*\)`)
)

// Sanitize parses an HTML document or fragment and returns the body's inner
// HTML with executable content removed. Styles declared in <head> are kept
// in front of the fragment.
func Sanitize(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(blockedElements).Remove()

	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		s.SetText(scrubCSS(s.Text()))
	})

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		var remove []string
		for _, attr := range node.Attr {
			key := strings.ToLower(attr.Key)
			if strings.HasPrefix(key, "on") {
				remove = append(remove, attr.Key)
				continue
			}
			if key == "style" {
				s.SetAttr(attr.Key, scrubCSS(attr.Val))
				continue
			}
			for _, urlAttr := range urlAttributes {
				if key == urlAttr && unsafeURL(node.Data, attr.Val) {
					remove = append(remove, attr.Key)
				}
			}
		}
		for _, key := range remove {
			s.RemoveAttr(key)
		}
	})

	var sb strings.Builder
	doc.Find("head style").Each(func(_ int, s *goquery.Selection) {
		if html, err := goquery.OuterHtml(s); err == nil {
			sb.WriteString(html)
		}
	})

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize HTML: %w", err)
	}
	sb.WriteString(body)

	return strings.TrimSpace(sb.String()), nil
}

// unsafeURL reports whether a URL attribute value could execute script or
// make the renderer fetch something. Links may point anywhere but script and
// data URLs; every other element may only reference inline images or
// fragments of the same document.
func unsafeURL(element, value string) bool {
	cleaned := strings.Map(func(r rune) rune {
		if r <= ' ' {
			return -1
		}
		return r
	}, strings.ToLower(value))

	if linkElements[element] {
		return strings.HasPrefix(cleaned, "javascript:") ||
			strings.HasPrefix(cleaned, "vbscript:") ||
			strings.HasPrefix(cleaned, "data:")
	}
	return !inlineReference(cleaned)
}

func inlineReference(cleaned string) bool {
	return strings.HasPrefix(cleaned, "data:image/") || strings.HasPrefix(cleaned, "#")
}

// scrubCSS drops @import rules and any url() that is not an inline image.
func scrubCSS(css string) string {
	css = cssImport.ReplaceAllString(css, "")
	return cssURL.ReplaceAllStringFunc(css, func(match string) string {
		target := cssURL.FindStringSubmatch(match)[2]
		cleaned := strings.ToLower(strings.TrimSpace(target))
		if inlineReference(cleaned) {
			return match
		}
		return "none"
	})
}
