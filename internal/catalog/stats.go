package catalog

// Stats are catalog-wide totals.
type Stats struct {
	Plugins   int `json:"plugins"`
	Downloads int `json:"downloads"`
	Authors   int `json:"authors"`
}

// ComputeStats counts plugins, total downloads and distinct authors.
func ComputeStats(plugins []Plugin) Stats {
	authors := make(map[string]struct{})
	s := Stats{Plugins: len(plugins)}
	for _, p := range plugins {
		s.Downloads += p.Downloads()
		for _, a := range p.Author {
			authors[a] = struct{}{}
		}
	}
	s.Authors = len(authors)
	return s
}
