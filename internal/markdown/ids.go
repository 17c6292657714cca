package markdown

import (
	"bytes"
	"regexp"
	"strconv"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// nonWord matches runs of characters outside [A-Za-z0-9_].
var nonWord = regexp.MustCompile(`\W+`)

// HeadingID derives an anchor id from raw heading text: lowercased, with
// every run of non-word characters replaced by a single hyphen.
// Example: "Why Edge, Why Now?" -> "why-edge-why-now-"
func HeadingID(text string) string {
	return nonWord.ReplaceAllString(string(bytes.ToLower([]byte(text))), "-")
}

// headingIDs implements parser.IDs for a single document. Repeated ids get
// a numeric suffix ("intro", "intro-1", "intro-2").
type headingIDs struct {
	seen map[string]struct{}
}

func newHeadingIDs() *headingIDs {
	return &headingIDs{seen: make(map[string]struct{})}
}

// Generate returns a unique id for the given heading text.
func (s *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	id := HeadingID(string(value))
	if id == "" {
		id = "heading"
	}
	if _, taken := s.seen[id]; !taken {
		s.seen[id] = struct{}{}
		return []byte(id)
	}
	for i := 1; ; i++ {
		candidate := id + "-" + strconv.Itoa(i)
		if _, taken := s.seen[candidate]; !taken {
			s.seen[candidate] = struct{}{}
			return []byte(candidate)
		}
	}
}

// Put reserves an id that was assigned explicitly.
func (s *headingIDs) Put(value []byte) {
	s.seen[string(value)] = struct{}{}
}

// headingIDTransformer assigns ids to headings in document order. The id is
// built from every line of the heading, so multi-line setext headings are
// not reduced to their last line.
type headingIDTransformer struct{}

func (headingIDTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	ids := pc.IDs()
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if _, ok := h.AttributeString("id"); !ok {
			h.SetAttribute([]byte("id"), ids.Generate(headingText(h, source), ast.KindHeading))
		}
		return ast.WalkSkipChildren, nil
	})
}

// headingText joins the raw lines of a heading with single spaces.
func headingText(h *ast.Heading, source []byte) []byte {
	lines := h.Lines()
	parts := make([][]byte, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if line := bytes.TrimSpace(seg.Value(source)); len(line) > 0 {
			parts = append(parts, line)
		}
	}
	return bytes.Join(parts, []byte(" "))
}
