package domain

// PageMark records the rune offset at which a page begins in a document's
// normalized text. Types without pages produce no marks.
type PageMark struct {
	Offset int
	Page   int
}

// PageAt returns the page covering the given rune offset, or 0 when the
// marks carry no page information.
func PageAt(marks []PageMark, offset int) int {
	page := 0
	for _, m := range marks {
		if m.Offset > offset {
			break
		}
		page = m.Page
	}
	return page
}
