package types

// Document is one ordinance section as produced by the scraper. ID is
// assigned by the index at ingestion time, sequentially in insertion
// order; the JSON input carries no IDs.
type Document struct {
	ID            int    `json:"id"`
	SectionNumber string `json:"section_number"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	Chapter       string `json:"chapter"`
	Jurisdiction  string `json:"jurisdiction"`
	URL           string `json:"url"`
}

// Validate checks the fields required for indexing. Only the title is
// mandatory; everything else may be empty.
func (d *Document) Validate() error {
	if d.Title == "" {
		return ErrMissingTitle
	}
	return nil
}
