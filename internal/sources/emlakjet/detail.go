package emlakjet

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// propertyDetail holds the structured sections of a detail page's
// description box
type propertyDetail struct {
	MainHeading string
	Paragraphs  []string
	Lists       []detailList
	Highlights  []string
}

type detailList struct {
	Title string
	Items []string
}

// fetchPropertyDetails fetches a detail page and extracts the structured
// description sections
func (s *Source) fetchPropertyDetails(ctx context.Context, slug string) (*propertyDetail, error) {
	detailURL := fmt.Sprintf("%s/ilan/%s", s.config.BaseURL, slug)

	doc, err := s.client.GetDocument(ctx, detailURL)
	if err != nil {
		return nil, err
	}

	return parsePropertyDetail(doc), nil
}

// parsePropertyDetail walks the description container. Sections are pulled in
// document order: a bold main heading, free paragraphs, titled lists and
// highlight lines marked with decoration characters. A paragraph that titles
// a list is captured once, on the list.
func parsePropertyDetail(doc *goquery.Document) *propertyDetail {
	detail := &propertyDetail{}

	container := doc.Find(".uiBoxContainer")
	if container.Length() == 0 {
		return detail
	}

	heading := container.Find(`span[style*="font-weight: bold"] strong, strong`).First()
	if heading.Length() > 0 {
		detail.MainHeading = strings.TrimSpace(heading.Text())
	}

	// Lists first, so their title paragraphs can be excluded from Paragraphs
	listTitles := make(map[string]bool)
	container.Find("ul").Each(func(_ int, ul *goquery.Selection) {
		list := detailList{}

		prev := ul.Prev()
		if prev.Is("p") {
			prevText := strings.TrimSpace(prev.Text())
			if strings.HasSuffix(prevText, ":") ||
				strings.Contains(prevText, "Avantaj") ||
				strings.Contains(prevText, "Özellik") {
				list.Title = prevText
				listTitles[prevText] = true
			}
		}

		ul.Find("li").Each(func(_ int, li *goquery.Selection) {
			if text := strings.TrimSpace(li.Text()); text != "" {
				list.Items = append(list.Items, text)
			}
		})

		if len(list.Items) > 0 {
			detail.Lists = append(detail.Lists, list)
		}
	})

	container.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if text == "" || listTitles[text] || text == detail.MainHeading {
			return
		}
		detail.Paragraphs = append(detail.Paragraphs, text)
	})

	seen := make(map[string]bool)
	container.Find("p, span").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if !containsHighlightMarker(text) {
			return
		}
		clean := strings.TrimSpace(stripHighlightMarkers(text))
		if clean != "" && !seen[clean] {
			seen[clean] = true
			detail.Highlights = append(detail.Highlights, clean)
		}
	})

	return detail
}

var highlightMarkers = []string{"✨", "⭐", "💫"}

func containsHighlightMarker(text string) bool {
	for _, marker := range highlightMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func stripHighlightMarkers(text string) string {
	for _, marker := range highlightMarkers {
		text = strings.ReplaceAll(text, marker, "")
	}
	return text
}

// buildDescription concatenates the title with the detail sections in
// document order into one descriptive string
func buildDescription(title string, detail *propertyDetail) string {
	var b strings.Builder
	b.WriteString(title)

	if detail.MainHeading != "" {
		b.WriteString(" - ")
		b.WriteString(detail.MainHeading)
	}

	for _, paragraph := range detail.Paragraphs {
		b.WriteString(" ")
		b.WriteString(paragraph)
	}

	for _, list := range detail.Lists {
		if list.Title != "" {
			b.WriteString(" ")
			b.WriteString(list.Title)
		}
		for _, item := range list.Items {
			b.WriteString(" ")
			b.WriteString(item)
		}
	}

	for _, highlight := range detail.Highlights {
		b.WriteString(" ")
		b.WriteString(highlight)
	}

	return strings.TrimSpace(b.String())
}
