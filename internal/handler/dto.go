package handler

type ItemResponse struct {
	ID          int64    `json:"id"`
	Origin      string   `json:"origin"`
	Type        string   `json:"type"`
	ExternalID  string   `json:"externalId"`
	Source      *string  `json:"source"`
	Symbols     []string `json:"symbols"`
	PublishedAt string   `json:"publishedAt"`
	Title       string   `json:"title"`
	Summary     *string  `json:"summary"`
	Body        *string  `json:"body"`
	URL         *string  `json:"url"`
	ImageURL    *string  `json:"imageUrl"`
	Categories  []string `json:"categories"`
	ContentHash string   `json:"contentHash"`
}

type ArchiveResponse struct {
	Items      []ItemResponse `json:"items"`
	NextCursor *string        `json:"nextCursor"`
}

type StatsResponse struct {
	Origin   string `json:"origin"`
	Type     string `json:"type"`
	Total    int    `json:"total"`
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

type EarliestResponse struct {
	Earliest *string `json:"earliest"`
}
