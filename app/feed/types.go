package feed

// Source is a configured upstream feed.
type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Entry is a raw candidate delivered by a feed source, before dedup and
// scoring. ID falls back to the link when the provider assigns none.
type Entry struct {
	ID      string
	Title   string
	Summary string
	Link    string
}
