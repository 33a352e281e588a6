package domain

// Post is a normalised blog post.
// The ordered slice of posts handed to the pipeline defines output order.
type Post struct {
	// Title is the front matter title, or the file stem.
	Title string

	// Slug is the path relative to the input directory, without extension,
	// using forward slashes. Unique within a run.
	Slug string

	// Date is an ISO-8601 date, the raw front matter string, or empty.
	Date string

	// Text is the plain text used for embedding. Never empty.
	Text string
}

// Coordinate is a 2D position in the galaxy layout.
type Coordinate struct {
	X float64
	Y float64
}

// GalaxyPoint is one record of the visualisation dataset.
type GalaxyPoint struct {
	Title   string  `json:"title"`
	Slug    string  `json:"slug"`
	Date    string  `json:"date"`
	Cluster int     `json:"cluster"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}
