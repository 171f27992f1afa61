// Package pagination splits lesson content into display pages.
package pagination

import (
	"unicode/utf8"

	"github.com/cloudly/miniapp/internal/model"
)

// DefaultBudget is the number of characters a page holds before a paragraph
// is pushed onto the next one.
const DefaultBudget = 900

// Paginate groups blocks into pages of at most budget characters.
// Headings never start a new page, and a paragraph that alone exceeds the
// budget still gets a page of its own. Lengths count Unicode code points.
func Paginate(blocks []model.ContentBlock, budget int) [][]model.ContentBlock {
	var pages [][]model.ContentBlock
	var page []model.ContentBlock
	total := 0

	for _, block := range blocks {
		n := utf8.RuneCountInString(block.Content)

		if !block.IsHeading() && len(page) > 0 && total+n > budget {
			pages = append(pages, page)
			page = nil
			total = 0
		}

		page = append(page, block)
		total += n
	}

	if len(page) > 0 {
		pages = append(pages, page)
	}
	return pages
}

// Page returns the 1-based page n of blocks together with the page count.
// n is clamped into [1, total]; an empty lesson yields no blocks and 0 pages.
func Page(blocks []model.ContentBlock, budget, n int) ([]model.ContentBlock, int, int) {
	pages := Paginate(blocks, budget)
	if len(pages) == 0 {
		return nil, 0, 0
	}

	n = Clamp(n, len(pages))
	return pages[n-1], n, len(pages)
}

// Clamp limits a 1-based page number to [1, total].
func Clamp(n, total int) int {
	if total < 1 {
		return 1
	}
	return max(1, min(n, total))
}
