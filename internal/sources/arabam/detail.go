package arabam

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ilansync/internal/models"
)

// vehicleDetail holds every extractable detail-page section; all fields are
// optional
type vehicleDetail struct {
	Description   string
	DamageRecords []models.ConditionRecord
	TramerAmount  string
	Specs         map[string]string
	Equipment     []string
}

// The damage report is embedded as a script assignment rather than markup
var damageScriptRe = regexp.MustCompile(`(?s)window\.damage\s*=\s*(\[.*?\]);`)

// damageEntry mirrors the site's inline damage JSON shape
type damageEntry struct {
	Code             string `json:"Code"`
	Name             string `json:"Name"`
	Value            string `json:"Value"`
	ValueDescription string `json:"ValueDescription"`
	ValueText        string `json:"ValueText"`
}

// parseDetailPage extracts all detail sections from a listing's detail page
func parseDetailPage(doc *goquery.Document, logger arbor.ILogger) *vehicleDetail {
	detail := &vehicleDetail{}

	detail.Description = strings.TrimSpace(doc.Find("#tab-description div").First().Text())

	var scriptContent strings.Builder
	doc.Find("script").Each(func(_ int, script *goquery.Selection) {
		scriptContent.WriteString(script.Text())
	})
	if match := damageScriptRe.FindStringSubmatch(scriptContent.String()); match != nil {
		var entries []damageEntry
		if err := json.Unmarshal([]byte(match[1]), &entries); err != nil {
			logger.Debug().Err(err).Msg("Failed to parse inline damage records")
		} else {
			for _, entry := range entries {
				detail.DamageRecords = append(detail.DamageRecords, models.ConditionRecord{
					Code:             entry.Code,
					Name:             entry.Name,
					Value:            entry.Value,
					ValueDescription: entry.ValueDescription,
					ValueText:        entry.ValueText,
				})
			}
		}
	}

	detail.TramerAmount = strings.TrimSpace(doc.Find(".tramer-info .property-value").Text())

	specs := make(map[string]string)
	doc.Find("#tab-car-information .tab-content-car-information li").Each(func(_ int, item *goquery.Selection) {
		key := strings.TrimSpace(item.Find(".property-key").Text())
		value := strings.TrimSpace(item.Find(".property-value").Text())
		if key != "" && value != "" {
			specs[key] = value
		}
	})
	if len(specs) > 0 {
		detail.Specs = specs
	}

	doc.Find("#tab-equipment-information .equipment-list li").Each(func(_ int, item *goquery.Selection) {
		if text := strings.TrimSpace(item.Text()); text != "" {
			detail.Equipment = append(detail.Equipment, text)
		}
	})

	return detail
}

// parseGalleryImages collects up to max full-size image URLs from the detail
// page's thumbnail slider, deriving full-size URLs by size-token substitution
func parseGalleryImages(doc *goquery.Document, max int) []string {
	var images []string

	doc.Find("#thumbnail .swiper-wrapper .swiper-slide img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		if max > 0 && len(images) >= max {
			return false
		}
		imageURL := img.AttrOr("src", "")
		if imageURL == "" {
			imageURL = img.AttrOr("data-src", "")
		}
		if imageURL != "" && !strings.Contains(imageURL, "noImage") {
			images = append(images, convertToMainSize(imageURL))
		}
		return true
	})

	return images
}
