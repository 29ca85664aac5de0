package glif

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/text/encoding/ianaindex"
)

// Declarations holds the layout-relevant declarations of one glyph, in
// document order. Unicodes contains no duplicates.
type Declarations struct {
	Unicodes []rune
	Anchors  []Anchor
}

func (d *Declarations) addUnicode(r rune) {
	if !slices.Contains(d.Unicodes, r) {
		d.Unicodes = append(d.Unicodes, r)
	}
}

// Extractor extracts code points and anchors from a raw GLIF document.
type Extractor interface {
	Extract(data []byte) (Declarations, error)
}

var commentMarker = []byte("<!--")

// HasComment reports whether data contains an XML comment marker. This is
// the only condition under which the fast extractor is unsafe.
func HasComment(data []byte) bool {
	return bytes.Contains(data, commentMarker)
}

// Select returns the extractor to use for data: FastExtractor for
// comment-free documents, ParserExtractor otherwise.
func Select(data []byte) Extractor {
	if HasComment(data) {
		return ParserExtractor{}
	}
	return FastExtractor{}
}

// Option configures Extract.
type Option func(*ParserExtractor)

// WithTrace directs diagnostics of the XML parser to t instead of the
// package tracer.
func WithTrace(t tracing.Trace) Option {
	return func(p *ParserExtractor) {
		p.Trace = t
	}
}

// Extract extracts the declarations of data with the extractor chosen by Select.
func Extract(data []byte, opts ...Option) (Declarations, error) {
	ext := Select(data)
	if p, ok := ext.(ParserExtractor); ok {
		for _, opt := range opts {
			opt(&p)
		}
		ext = p
	}
	return ext.Extract(data)
}

// --- Fast path -------------------------------------------------------------

var (
	// group 2 holds the attributes, which may quote '>'
	unicodeOrAnchorPattern = regexp.MustCompile(`<\s*(anchor|unicode)((?:\s(?:[^>"']|"[^"]*"|'[^']*')*)?)/?>`)
	hexAttributePattern    = regexp.MustCompile(`(?:^|\s)hex\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// FastExtractor scans for unicode and anchor tags with a regular expression,
// without parsing the document. Input must not contain XML comments.
type FastExtractor struct{}

// Extract implements Extractor.
func (FastExtractor) Extract(data []byte) (Declarations, error) {
	var decl Declarations
	for _, m := range unicodeOrAnchorPattern.FindAllSubmatch(data, -1) {
		switch string(m[1]) {
		case "unicode":
			hex := hexAttributePattern.FindSubmatch(m[2])
			if hex == nil {
				continue
			}
			value := hex[1]
			if value == nil {
				value = hex[2]
			}
			if cp, ok := parseCodePoint(string(value)); ok {
				decl.addUnicode(cp)
			}
		case "anchor":
			a, err := parseAnchorElement(m[0])
			if err != nil {
				return decl, err
			}
			decl.Anchors = append(decl.Anchors, a)
		}
	}
	return decl, nil
}

// parseAnchorElement parses the start tag of a single anchor element.
func parseAnchorElement(raw []byte) (Anchor, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return Anchor{}, fmt.Errorf("malformed anchor %q: %w", raw, err)
	}
	start, ok := tok.(xml.StartElement)
	if !ok {
		return Anchor{}, fmt.Errorf("malformed anchor %q", raw)
	}
	return anchorFromAttrs(start.Attr)
}

// --- Structured fallback ---------------------------------------------------

// ParserExtractor tokenizes the complete document and inspects the direct
// children of the top-level glyph element. It handles comments correctly.
// Diagnostics go to Trace, or to the package tracer if Trace is nil.
type ParserExtractor struct {
	Trace tracing.Trace
}

// Extract implements Extractor.
func (p ParserExtractor) Extract(data []byte) (Declarations, error) {
	var decl Declarations
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = p.charsetReader
	var stack []string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		} else if err != nil {
			return decl, fmt.Errorf("GLIF syntax: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) > 0 && stack[len(stack)-1] == "glyph" {
				if err := decl.collect(t); err != nil {
					return decl, err
				}
			}
			stack = append(stack, t.Name.Local)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}
	return decl, nil
}

func (d *Declarations) collect(elem xml.StartElement) error {
	switch elem.Name.Local {
	case "unicode":
		if value, ok := hexAttr(elem.Attr); ok {
			if cp, ok := parseCodePoint(value); ok {
				d.addUnicode(cp)
			}
		}
	case "anchor":
		a, err := anchorFromAttrs(elem.Attr)
		if err != nil {
			return err
		}
		d.Anchors = append(d.Anchors, a)
	}
	return nil
}

// charsetReader converts documents declaring a non-UTF-8 encoding.
func (p ParserExtractor) charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(strings.TrimSpace(label))
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported GLIF encoding %q", label)
	}
	trace := p.Trace
	if trace == nil {
		trace = tracer()
	}
	trace.Debugf("decoding GLIF with charset %s", label)
	return enc.NewDecoder().Reader(input), nil
}
