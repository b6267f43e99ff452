package blockdetect

import (
	"fmt"
	"strings"
	"testing"

	"github.com/newswatch/scout/pkg/models"
)

// healthyPage builds a listing-sized page with enough anchors and text to
// pass every check.
func healthyPage() string {
	var b strings.Builder
	b.WriteString("<html><body><h1>World news</h1>")
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, `<article><h2><a href="/story-%d">Story number %d with a reasonably long headline</a></h2></article>`, i, i)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func TestInspectHealthy(t *testing.T) {
	sig := Inspect(healthyPage())
	if sig.Blocked {
		t.Fatalf("healthy page flagged as blocked: %s", sig.Reason)
	}
	if sig.Reason != models.ReasonNone {
		t.Fatalf("reason = %s, want none", sig.Reason)
	}
}

func TestInspectCaptcha(t *testing.T) {
	pages := []string{
		`<html><body><div class="g-recaptcha" data-sitekey="x"></div></body></html>`,
		`<html><body><iframe src="https://www.google.com/recaptcha/api2/anchor"></iframe></body></html>`,
		`<html><body><div class="h-captcha"></div></body></html>`,
	}
	for _, page := range pages {
		sig := Inspect(page)
		if !sig.Blocked || sig.Reason != models.ReasonCaptcha {
			t.Errorf("Inspect(%.40s...) = %+v, want captcha", page, sig)
		}
	}
}

func TestInspectBlockMessage(t *testing.T) {
	page := healthyPage()
	page = strings.Replace(page, "World news", "Access Denied", 1)
	sig := Inspect(page)
	if !sig.Blocked || sig.Reason != models.ReasonBlockMessage {
		t.Fatalf("sig = %+v, want block message", sig)
	}
}

// A captcha widget outranks a block phrase on the same page.
func TestInspectCaptchaPrecedence(t *testing.T) {
	page := `<html><body><h1>403 Forbidden</h1><div class="g-recaptcha"></div></body></html>`
	sig := Inspect(page)
	if sig.Reason != models.ReasonCaptcha {
		t.Fatalf("reason = %s, want captcha to win over block message", sig.Reason)
	}
}

func TestInspectNoContent(t *testing.T) {
	filler := strings.Repeat("<p>lorem ipsum dolor sit amet consectetur</p>", 30)
	page := "<html><body>" + filler + "</body></html>"
	sig := Inspect(page)
	if !sig.Blocked || sig.Reason != models.ReasonNoContent {
		t.Fatalf("sig = %+v, want no content", sig)
	}
}

func TestInspectEmptyPage(t *testing.T) {
	sig := Inspect(`<html><body><a href="/x">x</a><h1>t</h1></body></html>`)
	if !sig.Blocked || sig.Reason != models.ReasonEmptyPage {
		t.Fatalf("sig = %+v, want empty page", sig)
	}
}
