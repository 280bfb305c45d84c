// ABOUTME: HTML sanitizing for configuration-supplied markup.
// ABOUTME: Cell renderers and field descriptions pass through a bluemonday policy before output.

package htmlsafe

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Sanitize strips scripts, event handlers and unknown elements from raw while
// keeping basic formatting, links, images and class attributes.
func Sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(sanitizer().Sanitize(trimmed))
}

func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").Globally()
		p.AllowElements("span", "div", "img", "small")
		p.AllowAttrs("src", "alt", "width", "height").OnElements("img")
		policy = p
	})
	return policy
}
