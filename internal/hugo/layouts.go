package hugo

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/navigation"
)

var shortcodeName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// renderHead renders the head tags, one element per line.
func renderHead(tags []navigation.HeadTag) ([]byte, error) {
	var buf bytes.Buffer
	for _, t := range tags {
		node := &html.Node{
			Type:     html.ElementNode,
			Data:     t.Tag,
			DataAtom: atom.Lookup([]byte(t.Tag)),
		}
		for _, a := range t.Attrs {
			node.Attr = append(node.Attr, html.Attribute{Key: a.Key, Val: a.Value})
		}
		if err := html.Render(&buf, node); err != nil {
			return nil, derrors.WrapError(err, derrors.CategoryBuild, "failed to render head tag").
				WithContext("tag", t.Tag).
				Build()
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// renderShortcodes turns each custom container into a Hugo shortcode. The
// container title placeholder becomes the first shortcode argument, falling
// back to the upper-cased container type.
func renderShortcodes(containers []navigation.ContainerOptions) ([]siteFile, error) {
	var files []siteFile
	for _, c := range containers {
		if !shortcodeName.MatchString(c.Type) {
			return nil, derrors.ValidationError("invalid container type for shortcode").
				WithContext("type", c.Type).
				Build()
		}
		title := `{{ with .Get 0 }}{{ . }}{{ else }}` + strings.ToUpper(c.Type) + `{{ end }}`
		before := strings.ReplaceAll(c.Before, "{{"+c.Type+"}}", title)

		var buf bytes.Buffer
		buf.WriteString(before)
		buf.WriteString("\n{{ .Inner | .Page.RenderString }}\n")
		buf.WriteString(c.After)
		buf.WriteByte('\n')
		files = append(files, siteFile{name: "layouts/shortcodes/" + c.Type + ".html", data: buf.Bytes()})
	}
	return files, nil
}
