package transform

// TOCEntry is one table-of-contents link.
type TOCEntry struct {
	ID   string
	Text string
}

// Resolver returns the link for a cross-reference such as
// geogig-clone(1), or false when the page is unknown.
type Resolver func(name string, section int) (href string, ok bool)
