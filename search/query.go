package search

import (
	"strconv"
	"strings"
)

// Query is the parsed form of a client search request. It decouples the
// raw chat input from what the index engine needs.
type Query struct {
	RawInput string
	Terms    string // text handed to the index
	Author   string // optional author filter
	Limit    int
}

// ParseQuery extracts command-line style arguments from a raw search
// string. Example: invoice draft --author alice --limit 5
func ParseQuery(input string) *Query {
	query := &Query{RawInput: input, Limit: 10}

	parts := strings.Fields(input)
	var textTerms []string

	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			key := strings.TrimPrefix(part, "--")
			val := parts[i+1]

			switch key {
			case "author":
				query.Author = val
			case "limit":
				if n, err := strconv.Atoi(val); err == nil && n > 0 {
					query.Limit = n
				}
			}
			i++
			continue
		}

		if !strings.HasPrefix(part, "/") {
			textTerms = append(textTerms, part)
		}
	}

	query.Terms = strings.Join(textTerms, " ")
	return query
}
