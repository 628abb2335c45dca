package content

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PageSeparator splits a book asset name into book name and page number.
const PageSeparator = "!"

// GameBook is an in-game document with ordered pages.
type GameBook struct {
	Name  string   `json:"name"`
	Pages []string `json:"pages"`
}

// ParsePageName splits "{BookName}!{PageNumber}".
func ParsePageName(name string) (string, int, error) {
	i := strings.LastIndex(name, PageSeparator)
	if i <= 0 || i == len(name)-1 {
		return "", 0, fmt.Errorf("book asset %q is not named {book}%s{page}", name, PageSeparator)
	}
	page, err := strconv.Atoi(name[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("book asset %q has invalid page number: %w", name, err)
	}
	return name[:i], page, nil
}

// GroupBooks groups page assets into books ordered by page number. Assets
// with malformed names are returned in skipped.
func GroupBooks(assets map[string]string) (books map[string]*GameBook, skipped []string) {
	type page struct {
		number int
		text   string
	}
	pages := make(map[string][]page)
	for name, text := range assets {
		book, number, err := ParsePageName(name)
		if err != nil {
			skipped = append(skipped, name)
			continue
		}
		pages[book] = append(pages[book], page{number: number, text: text})
	}

	books = make(map[string]*GameBook, len(pages))
	for name, ps := range pages {
		sort.Slice(ps, func(i, j int) bool { return ps[i].number < ps[j].number })
		b := &GameBook{Name: name, Pages: make([]string, 0, len(ps))}
		for _, p := range ps {
			b.Pages = append(b.Pages, p.text)
		}
		books[name] = b
	}
	sort.Strings(skipped)
	return books, skipped
}
