package domain

// Category is one member of the closed attack taxonomy.
type Category string

const (
	CategoryRansomware    Category = "ransomware"
	CategoryMalware       Category = "malware"
	CategoryPhishing      Category = "phishing"
	CategoryDataBreach    Category = "data breach"
	CategoryDDoS          Category = "ddos"
	CategoryVulnerability Category = "vulnerability"
)

// Categories lists every valid category in default taxonomy order.
var Categories = []Category{
	CategoryRansomware,
	CategoryMalware,
	CategoryPhishing,
	CategoryDataBreach,
	CategoryDDoS,
	CategoryVulnerability,
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Article is a single ingested news record. Date is kept as scraped.
type Article struct {
	Title    string
	Date     string
	Category Category
	Summary  string
	Source   string
	URL      string
}

// Record is the wire shape exchanged with the remote store.
type Record struct {
	Title    string `json:"Title"`
	Date     string `json:"Date"`
	Category string `json:"Category"`
	Summary  string `json:"Summary"`
	Source   string `json:"Source"`
}

// Record converts the article to its store representation.
func (a Article) Record() Record {
	return Record{
		Title:    a.Title,
		Date:     a.Date,
		Category: string(a.Category),
		Summary:  a.Summary,
		Source:   a.Source,
	}
}

// ParsedArticle holds the raw fields read from an article page.
type ParsedArticle struct {
	Title string
	Date  string
	Body  string
}
