package arabam

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/ilansync/internal/models"
)

// Image size tokens embedded in the site's CDN URLs. Thumbnails carry the
// child size; swapping the token yields the full-resolution URL without a
// second image feed.
const (
	sliderChildSize = "120x90"
	sliderMainSize  = "580x435"
)

// convertToMainSize derives the full-size image URL from a thumbnail URL
func convertToMainSize(imageURL string) string {
	if imageURL == "" {
		return imageURL
	}
	return strings.Replace(imageURL, "_"+sliderChildSize+".jpg", "_"+sliderMainSize+".jpg", 1)
}

// parseListingRows extracts the normalized listings from a model listing
// page. Rows missing the native id, name or price are dropped; missing
// sub-elements elsewhere yield empty fields, not errors.
func parseListingRows(doc *goquery.Document, baseURL string) []*models.Listing {
	var listings []*models.Listing

	doc.Find(".listing-table-wrapper .table.listing-table.w100 tbody tr.listing-list-item").Each(func(_ int, row *goquery.Selection) {
		id := strings.TrimPrefix(row.AttrOr("id", ""), "listing")
		name := strings.TrimSpace(row.Find(".listing-modelname .listing-text-new").Text())
		title := strings.TrimSpace(row.Find(".listing-title-lines").Text())
		price := strings.TrimSpace(row.Find(".listing-price").Text())
		year := strings.TrimSpace(row.Find("td.listing-text").First().Find("a").Text())
		date := strings.TrimSpace(row.Find("td.listing-text.tac a").Text())

		var locationParts []string
		row.Find("td.listing-text").Last().Find("span[title]").Each(func(_ int, span *goquery.Selection) {
			if title, ok := span.Attr("title"); ok && title != "" {
				locationParts = append(locationParts, title)
			}
		})

		href := row.Find("a.link-overlay").AttrOr("href", "")

		var images []string
		if mainImage := row.Find("img").First().AttrOr("src", ""); mainImage != "" {
			images = append(images, convertToMainSize(mainImage))
		}

		if id == "" || name == "" || price == "" {
			return
		}

		listings = append(listings, &models.Listing{
			Source:       SourceName,
			Kind:         models.KindVehicle,
			SourceID:     id,
			Title:        title,
			ListingType:  name,
			Price:        models.PriceDetail{Raw: price},
			Year:         year,
			ListingDate:  date,
			LocationText: strings.Join(locationParts, ", "),
			Images:       images,
			URL:          absoluteURL(baseURL, href),
		})
	})

	return listings
}

// categoryLink is one brand or model entry on a category page
type categoryLink struct {
	Name  string
	URL   string
	Count string
}

// Category pages render the link list under one of a few wrappers depending
// on the page variant, so the selectors are tried most-specific first.
var categorySelectors = []string{
	".scrollable-category .category-list-wrapper .inner-list li a.list-item",
	".category-list-wrapper .inner-list li a.list-item",
	".inner-list li a.list-item",
	"a.list-item",
}

// parseCategoryLinks extracts brand or model links from a category page
func parseCategoryLinks(doc *goquery.Document, baseURL string) []categoryLink {
	var links []categoryLink

	for _, selector := range categorySelectors {
		elements := doc.Find(selector)
		if elements.Length() == 0 {
			continue
		}

		elements.Each(func(_ int, el *goquery.Selection) {
			name := strings.TrimSpace(el.Find(".list-name").Text())
			if name == "" {
				name = strings.TrimSpace(el.Find("span.list-name").Text())
			}
			if name == "" {
				name = strings.TrimSpace(el.Find(".mr4").Text())
			}

			href := el.AttrOr("href", "")
			if name == "" {
				name = nameFromCategoryURL(href)
			}

			if name == "" || href == "" || !strings.Contains(href, "/otomobil") {
				return
			}

			links = append(links, categoryLink{
				Name:  name,
				URL:   absoluteURL(baseURL, href),
				Count: strings.TrimSpace(el.Find(".count").Text()),
			})
		})
		break
	}

	return links
}

// nameFromCategoryURL falls back to deriving a display name from the URL's
// last path segment when the anchor has no name element
func nameFromCategoryURL(href string) string {
	idx := strings.Index(href, "/otomobil/")
	if idx < 0 {
		return ""
	}
	segment := href[idx+len("/otomobil/"):]
	if segment == "" {
		return ""
	}
	segment = strings.ReplaceAll(segment, "-", " ")
	return strings.ToUpper(segment[:1]) + segment[1:]
}

func absoluteURL(baseURL, href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return baseURL + href
}

// slugFromURL returns the last path segment of a category URL, used to build
// stable partition keys
func slugFromURL(rawURL string) string {
	trimmed := strings.TrimSuffix(rawURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return trimmed
	}
	return trimmed[idx+1:]
}
