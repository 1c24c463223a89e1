package catalog

import "strings"

// Search returns the plugins matching every space-separated term of query.
// A term matches when it is a case-insensitive substring of the name, the
// zh_tw description or any author. An empty query returns all plugins.
func Search(plugins []Plugin, query string) []Plugin {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return append([]Plugin(nil), plugins...)
	}

	out := make([]Plugin, 0, len(plugins))
	for _, p := range plugins {
		if matchesAll(p, terms) {
			out = append(out, p)
		}
	}
	return out
}

func matchesAll(p Plugin, terms []string) bool {
	fields := make([]string, 0, 2+len(p.Author))
	fields = append(fields, strings.ToLower(p.Name), strings.ToLower(p.Description.ZhTW))
	for _, a := range p.Author {
		fields = append(fields, strings.ToLower(a))
	}

	for _, term := range terms {
		found := false
		for _, f := range fields {
			if strings.Contains(f, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Find returns the plugin with exactly the given name.
func Find(plugins []Plugin, name string) (Plugin, bool) {
	for _, p := range plugins {
		if p.Name == name {
			return p, true
		}
	}
	return Plugin{}, false
}
