package transform

import (
	"strings"
	"testing"
)

func geogigResolver(name string, section int) (string, bool) {
	if !strings.HasPrefix(name, "geogig") || section != 1 {
		return "", false
	}
	return name + ".html", true
}

func TestRewriteLinksPlainReference(t *testing.T) {
	output := RewriteLinks(`<p>See geogig-log(1) for history.</p>`, geogigResolver)

	expected := `<a class="reference internal" href="geogig-log.html">geogig-log(1)</a>`
	if !strings.Contains(output, expected) {
		t.Fatalf("expected link for geogig-log(1), got: %s", output)
	}
}

func TestRewriteLinksWrapsFormatting(t *testing.T) {
	output := RewriteLinks(`<p><strong>geogig-add</strong>(1), <em>geogig-commit</em>(1)</p>`, geogigResolver)

	if !strings.Contains(output, `<a class="reference internal" href="geogig-add.html"><strong>geogig-add</strong>(1)</a>`) {
		t.Fatalf("expected strong xref wrapped, got: %s", output)
	}
	if !strings.Contains(output, `<a class="reference internal" href="geogig-commit.html"><em>geogig-commit</em>(1)</a>`) {
		t.Fatalf("expected em xref wrapped, got: %s", output)
	}
}

func TestRewriteLinksUnknownPage(t *testing.T) {
	input := `<p>See ls(1) and geogig-log(8).</p>`
	if output := RewriteLinks(input, geogigResolver); output != input {
		t.Fatalf("expected unknown pages left alone, got: %s", output)
	}
}

func TestRewriteLinksSkipsAnchorsAndLiterals(t *testing.T) {
	input := `<a href="x.html">geogig-log(1)</a><pre>$ man geogig-log(1)</pre>`
	if output := RewriteLinks(input, geogigResolver); output != input {
		t.Fatalf("expected anchors and literal blocks untouched, got: %s", output)
	}
}

func TestRewriteLinksAfterLiteral(t *testing.T) {
	output := RewriteLinks(`<pre>geogig-log(1)</pre><p>geogig-log(1)</p>`, geogigResolver)

	if strings.Count(output, "<a ") != 1 {
		t.Fatalf("expected exactly one link, got: %s", output)
	}
	if !strings.HasPrefix(output, "<pre>geogig-log(1)</pre>") {
		t.Fatalf("expected literal block unchanged, got: %s", output)
	}
}
