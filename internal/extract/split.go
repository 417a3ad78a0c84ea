package extract

import "strings"

// splitIntoPages splits fullText into exactly totalPages chunks. Form feed
// characters are treated as page breaks when enough are present; otherwise
// the text is split near the average page length on line boundaries. Missing
// pages are padded with empty strings, excess chunks are dropped.
func splitIntoPages(fullText string, totalPages int) []string {
	if totalPages <= 0 {
		return nil
	}
	pages := strings.Split(fullText, "\f")

	if len(pages) < totalPages {
		avgCharsPerPage := (len(fullText) + totalPages - 1) / totalPages
		pages = pages[:0]
		var current strings.Builder
		for _, line := range strings.Split(fullText, "\n") {
			current.WriteString(line)
			current.WriteByte('\n')
			if current.Len() >= avgCharsPerPage && len(pages) < totalPages-1 {
				pages = append(pages, current.String())
				current.Reset()
			}
		}
		if strings.TrimSpace(current.String()) != "" {
			pages = append(pages, current.String())
		}
	}

	for len(pages) < totalPages {
		pages = append(pages, "")
	}
	if len(pages) > totalPages {
		pages = pages[:totalPages]
	}
	return pages
}
