/*
Package glif extracts the layout-relevant data from GLIF glyph documents.

GLIF is the XML format UFO font sources use to store one glyph per file.
For compiling OpenType layout features, only two kinds of declarations of a
glyph are of interest: its Unicode code points and its anchors. Everything
else (outlines, advance, glyph lib) is skipped.

There are two extractors with identical output:

▪︎ FastExtractor scans the raw bytes with a regular expression and does not
parse the document. It is unaware of XML comments.

▪︎ ParserExtractor runs a streaming XML tokenizer over the complete document
and only looks at direct children of the top-level glyph element.

Select (or Extract) chooses between them with a single predicate: the fast
path is used unless the document contains a comment marker. Comments are
the one construct that may hide declarations from a pattern scan, or fake
them.

Malformed code point values are dropped silently. Broken anchor declarations
are reported as errors.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package glif

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'ufotl.glif'
func tracer() tracing.Trace {
	return tracing.Select("ufotl.glif")
}
