package markdown

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

const externalLinkIcon = `<svg class="external-link-icon" xmlns="http://www.w3.org/2000/svg" width="12" height="12" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><path d="M18 13v6a2 2 0 0 1-2 2H5a2 2 0 0 1-2-2V8a2 2 0 0 1 2-2h6"></path><polyline points="15 3 21 3 21 9"></polyline><line x1="10" y1="14" x2="21" y2="3"></line></svg>`

// codeEscaper escapes code block bodies and language labels.
var codeEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// nodeRenderer overrides goldmark's default HTML output for the block and
// inline nodes the site styles. Everything else falls through to the
// default html renderer.
type nodeRenderer struct {
	siteDomain string
}

func newNodeRenderer(siteDomain string) renderer.NodeRenderer {
	return &nodeRenderer{siteDomain: strings.ToLower(strings.TrimSpace(siteDomain))}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHeading, r.renderHeading)
	reg.Register(ast.KindBlockquote, r.renderBlockquote)
	reg.Register(ast.KindList, r.renderList)
	reg.Register(ast.KindListItem, r.renderListItem)
	reg.Register(ast.KindCodeBlock, r.renderCodeBlock)
	reg.Register(ast.KindFencedCodeBlock, r.renderCodeBlock)
	reg.Register(ast.KindThematicBreak, r.renderThematicBreak)
	reg.Register(ast.KindEmphasis, r.renderEmphasis)
	reg.Register(ast.KindLink, r.renderLink)
	reg.Register(ast.KindAutoLink, r.renderAutoLink)
	reg.Register(ast.KindImage, r.renderImage)

	reg.Register(east.KindTable, r.renderTable)
	reg.Register(east.KindTableHeader, r.renderTableHeader)
	reg.Register(east.KindTableRow, r.renderTableRow)
	reg.Register(east.KindTableCell, r.renderTableCell)
	reg.Register(east.KindTaskCheckBox, r.renderTaskCheckBox)
}

func (r *nodeRenderer) renderHeading(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	if !entering {
		fmt.Fprintf(w, "</h%d>\n", n.Level)
		return ast.WalkContinue, nil
	}
	if id, ok := n.AttributeString("id"); ok {
		if b, ok := id.([]byte); ok {
			fmt.Fprintf(w, `<h%d id="%s">`, n.Level, util.EscapeHTML(b))
			return ast.WalkContinue, nil
		}
	}
	fmt.Fprintf(w, "<h%d>", n.Level)
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderBlockquote(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<blockquote class=\"styled-quote\">\n")
	} else {
		_, _ = w.WriteString("</blockquote>\n")
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderList(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.List)
	tag := "ul"
	if n.IsOrdered() {
		tag = "ol"
	}
	if !entering {
		fmt.Fprintf(w, "</%s>\n", tag)
		return ast.WalkContinue, nil
	}
	if n.IsOrdered() && n.Start != 1 {
		fmt.Fprintf(w, "<ol start=\"%d\" class=\"styled-list\">\n", n.Start)
		return ast.WalkContinue, nil
	}
	fmt.Fprintf(w, "<%s class=\"styled-list\">\n", tag)
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderListItem(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</li>\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("<li>")
	if box := taskCheckBox(node); box != nil {
		if box.IsChecked {
			_, _ = w.WriteString(`<span class="checkbox checked"></span>`)
		} else {
			_, _ = w.WriteString(`<span class="checkbox"></span>`)
		}
	}
	if fc := node.FirstChild(); fc != nil && fc.Kind() != ast.KindTextBlock {
		_ = w.WriteByte('\n')
	}
	return ast.WalkContinue, nil
}

// taskCheckBox returns the checkbox that opens a task list item, if any.
func taskCheckBox(item ast.Node) *east.TaskCheckBox {
	first := item.FirstChild()
	if first == nil {
		return nil
	}
	box, _ := first.FirstChild().(*east.TaskCheckBox)
	return box
}

// renderTaskCheckBox emits nothing; the enclosing list item draws the box.
func (r *nodeRenderer) renderTaskCheckBox(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	var lang string
	if fc, ok := node.(*ast.FencedCodeBlock); ok {
		lang = codeEscaper.Replace(string(fc.Language(source)))
	}

	var body bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		body.Write(seg.Value(source))
	}
	code := strings.TrimRight(body.String(), "\n")

	_, _ = w.WriteString(`<div class="code-block">`)
	if lang != "" {
		fmt.Fprintf(w, `<span class="code-lang">%s</span>`, lang)
		fmt.Fprintf(w, `<pre><code class="hljs language-%s">`, lang)
	} else {
		_, _ = w.WriteString(`<pre><code class="hljs">`)
	}
	_, _ = w.WriteString(codeEscaper.Replace(code))
	_, _ = w.WriteString("</code></pre></div>\n")
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderThematicBreak(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<hr class=\"styled-divider\" />\n")
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderEmphasis(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Emphasis)
	switch {
	case n.Level == 2 && entering:
		_, _ = w.WriteString(`<strong class="text-white font-semibold">`)
	case n.Level == 2:
		_, _ = w.WriteString("</strong>")
	case entering:
		_, _ = w.WriteString("<em>")
	default:
		_, _ = w.WriteString("</em>")
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	if entering {
		r.openAnchor(w, n.Destination, n.Title)
	} else {
		r.closeAnchor(w, n.Destination)
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderAutoLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.AutoLink)
	dest := n.URL(source)
	if n.AutoLinkType == ast.AutoLinkEmail && !bytes.HasPrefix(bytes.ToLower(dest), []byte("mailto:")) {
		dest = append([]byte("mailto:"), dest...)
	}
	if !entering {
		r.closeAnchor(w, dest)
		return ast.WalkContinue, nil
	}
	r.openAnchor(w, dest, nil)
	_, _ = w.Write(util.EscapeHTML(n.Label(source)))
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) openAnchor(w util.BufWriter, dest, title []byte) {
	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(safeURL(dest))
	_ = w.WriteByte('"')
	if len(title) > 0 {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(title))
		_ = w.WriteByte('"')
	}
	if r.isExternal(string(dest)) {
		_, _ = w.WriteString(` target="_blank" rel="noopener noreferrer"`)
	}
	_ = w.WriteByte('>')
}

func (r *nodeRenderer) closeAnchor(w util.BufWriter, dest []byte) {
	if r.isExternal(string(dest)) {
		_, _ = w.WriteString(externalLinkIcon)
	}
	_, _ = w.WriteString("</a>")
}

// isExternal reports whether dest is an absolute http(s) URL whose host is
// neither the site domain nor one of its subdomains.
func (r *nodeRenderer) isExternal(dest string) bool {
	if !strings.HasPrefix(strings.ToLower(dest), "http") {
		return false
	}
	u, err := url.Parse(dest)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if r.siteDomain == "" {
		return true
	}
	host := strings.ToLower(u.Hostname())
	return host != r.siteDomain && !strings.HasSuffix(host, "."+r.siteDomain)
}

func (r *nodeRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)
	alt := util.EscapeHTML(nodeText(n, source))

	_, _ = w.WriteString(`<figure class="blog-figure"><img src="`)
	_, _ = w.Write(safeURL(n.Destination))
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(alt)
	_ = w.WriteByte('"')
	if len(n.Title) > 0 {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_ = w.WriteByte('"')
	}
	_, _ = w.WriteString(` loading="lazy" />`)
	if len(alt) > 0 {
		_, _ = w.WriteString("<figcaption>")
		_, _ = w.Write(alt)
		_, _ = w.WriteString("</figcaption>")
	}
	_, _ = w.WriteString("</figure>")
	return ast.WalkSkipChildren, nil
}

// safeURL escapes a link destination for an attribute value. Script-capable
// schemes are replaced by an empty string.
func safeURL(dest []byte) []byte {
	if html.IsDangerousURL(dest) {
		return nil
	}
	return util.EscapeHTML(util.URLEscape(dest, true))
}

// nodeText concatenates the plain text below n.
func nodeText(n ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.Write(nodeText(c, source))
		}
	}
	return buf.Bytes()
}

func (r *nodeRenderer) renderTable(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<div class=\"table-wrapper\">\n<table>\n")
		return ast.WalkContinue, nil
	}
	if node.ChildCount() > 1 {
		_, _ = w.WriteString("</tbody>\n")
	}
	_, _ = w.WriteString("</table>\n</div>\n")
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderTableHeader(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<thead>\n<tr>\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("</tr>\n</thead>\n")
	if node.NextSibling() != nil {
		_, _ = w.WriteString("<tbody>\n")
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderTableRow(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<tr>\n")
	} else {
		_, _ = w.WriteString("</tr>\n")
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderTableCell(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*east.TableCell)
	tag := "td"
	if node.Parent() != nil && node.Parent().Kind() == east.KindTableHeader {
		tag = "th"
	}
	if !entering {
		fmt.Fprintf(w, "</%s>\n", tag)
		return ast.WalkContinue, nil
	}
	var align string
	switch n.Alignment {
	case east.AlignLeft:
		align = "left"
	case east.AlignCenter:
		align = "center"
	case east.AlignRight:
		align = "right"
	}
	if align != "" {
		fmt.Fprintf(w, `<%s style="text-align: %s">`, tag, align)
	} else {
		fmt.Fprintf(w, "<%s>", tag)
	}
	return ast.WalkContinue, nil
}
