// Package blockdetect classifies a rendered page as blocked or usable.
// Inspection is a pure function of the page HTML: deterministic for
// identical input and free of page-state side effects.
package blockdetect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/newswatch/scout/pkg/models"
)

// minPageBytes is the rendered-HTML size below which a page is treated as
// empty. Real listing pages are orders of magnitude larger; interstitials
// and error shells routinely come in under this.
const minPageBytes = 512

// captchaSelectors match the widgets of the common challenge providers.
var captchaSelectors = []string{
	".g-recaptcha",
	"#g-recaptcha",
	".h-captcha",
	"#cf-challenge-running",
	"#challenge-form",
	"iframe[src*='recaptcha']",
	"iframe[src*='hcaptcha']",
	"iframe[src*='captcha']",
	"form[action*='captcha']",
}

// blockPhrases are matched case-insensitively against the page text.
var blockPhrases = []string{
	"access denied",
	"access to this page has been denied",
	"403 forbidden",
	"error 403",
	"rate limit",
	"too many requests",
	"unusual traffic",
	"are you a robot",
	"verify you are human",
	"enable javascript and cookies",
	"blocked by network security",
}

// Inspect classifies the rendered HTML of a loaded page. Checks run in a
// fixed precedence (captcha, block message, structural emptiness, byte-size
// emptiness) and the first match wins.
func Inspect(html string) models.BlockSignal {
	lower := strings.ToLower(html)

	doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(html))
	if docErr == nil {
		for _, sel := range captchaSelectors {
			if doc.Find(sel).Length() > 0 {
				return models.BlockSignal{Blocked: true, Reason: models.ReasonCaptcha}
			}
		}
	}
	// Selector parse failure should not hide an obvious captcha marker.
	if docErr != nil && (strings.Contains(lower, "g-recaptcha") || strings.Contains(lower, "h-captcha")) {
		return models.BlockSignal{Blocked: true, Reason: models.ReasonCaptcha}
	}

	for _, phrase := range blockPhrases {
		if strings.Contains(lower, phrase) {
			return models.BlockSignal{Blocked: true, Reason: models.ReasonBlockMessage}
		}
	}

	if docErr == nil {
		if doc.Find("a").Length() == 0 && doc.Find("article, h1, h2, h3").Length() == 0 {
			return models.BlockSignal{Blocked: true, Reason: models.ReasonNoContent}
		}
	}

	if len(strings.TrimSpace(html)) < minPageBytes {
		return models.BlockSignal{Blocked: true, Reason: models.ReasonEmptyPage}
	}

	return models.BlockSignal{Blocked: false, Reason: models.ReasonNone}
}
