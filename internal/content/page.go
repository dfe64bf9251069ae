package content

import (
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/inful/mdfp"
	"github.com/microcosm-cc/bluemonday"

	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/frontmatter"
	"git.home.luguber.info/inful/docnav/internal/markdown"
	"git.home.luguber.info/inful/docnav/internal/navigation"
)

// sidebarDepthKey lets a page override the header depth in its frontmatter.
const sidebarDepthKey = "sidebarDepth"

// Page is what the navigation knows about one content file.
type Page struct {
	Ref  navigation.PageRef
	Path string // relative to the content root, slash separated
	// Title is plain text: frontmatter title, else the first h1.
	Title       string
	Headers     []markdown.Heading
	Frontmatter map[string]any
	Fingerprint string
	// FingerprintStale is set when the frontmatter carries a fingerprint that
	// no longer matches the content.
	FingerprintStale bool
}

var titlePolicy = bluemonday.StrictPolicy()

// Load resolves ref and reads its page. depth is the sidebar depth: headers
// h2 to h(1+depth) are collected, none when depth is 0. A sidebarDepth
// frontmatter value takes precedence.
func (r *Resolver) Load(ref navigation.PageRef, depth int) (*Page, error) {
	full, err := r.Resolve(ref)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(full)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "read page").
			WithContext("path", full).
			Build()
	}
	doc, err := frontmatter.Parse(raw)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryContent, "invalid frontmatter").
			WithContext("page", string(ref)).
			WithContext("path", full).
			Build()
	}

	rel, err := filepath.Rel(r.Root, full)
	if err != nil {
		rel = full
	}
	page := &Page{
		Ref:         ref,
		Path:        filepath.ToSlash(rel),
		Frontmatter: doc.Fields,
	}

	if t, ok := doc.String("title"); ok && strings.TrimSpace(t) != "" {
		page.Title = plainTitle(t)
	} else if h1, ok := markdown.FirstHeading(doc.Body, 1); ok {
		page.Title = plainTitle(h1)
	}

	if d, ok := doc.Fields[sidebarDepthKey].(int); ok && d >= 0 {
		depth = d
	}
	if depth > 0 {
		page.Headers = markdown.Headings(doc.Body, 2, 1+depth)
	}

	fm, err := frontmatter.Canonical(doc.Fields, mdfp.FingerprintField)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryContent, "serialize frontmatter").
			WithContext("page", string(ref)).
			Build()
	}
	page.Fingerprint = mdfp.CalculateFingerprintFromParts(fm, string(doc.Body))
	if existing, ok := doc.String(mdfp.FingerprintField); ok && strings.TrimSpace(existing) != page.Fingerprint {
		page.FingerprintStale = true
	}
	return page, nil
}

// plainTitle strips markup from authored titles such as "Uso de <code>v-for</code>".
func plainTitle(s string) string {
	return strings.TrimSpace(html.UnescapeString(titlePolicy.Sanitize(s)))
}
