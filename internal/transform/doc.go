// Package transform post-processes rendered HTML page fragments before
// they are placed in a layout.
//
// The pipeline runs as a sequence of stages:
//  1. Link name(section) cross-references to known pages
//  2. Wrap each h2 section body in a section-body div
//  3. Give each h2 a slug id and collect the table of contents
package transform

// Doc holds an HTML fragment as it passes through the pipeline.
type Doc struct {
	Body []byte
	TOC  []TOCEntry
}

// Pipeline runs all stages on html. A nil resolve skips cross-reference
// linking.
func Pipeline(html []byte, resolve Resolver) Doc {
	doc := Doc{Body: html}

	// Stage 1: Cross-references.
	if resolve != nil {
		doc.Body = bRewriteXrefs(resolve, doc.Body)
	}

	// Stage 2: Section wrappers.
	doc.Body = bWrapSections(doc.Body)

	// Stage 3: TOC.
	doc.Body, doc.TOC = bGenerateTOC(doc.Body)

	return doc
}
