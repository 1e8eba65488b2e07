package arabam

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

const detailPageHTML = `
<html><body>
<div id="tab-description"><div>Aile aracı, bakımları yetkili serviste yapıldı.</div></div>
<script>
  var other = 1;
  window.damage = [{"Code":"13","Name":"Sağ ön çamurluk","Value":"2","ValueDescription":"Boyalı","ValueText":"Boyalı"},{"Code":"5","Name":"Tavan","Value":"1","ValueDescription":"Orjinal","ValueText":"Orjinal"}];
</script>
<div class="tramer-info"><span class="property-value">22.500 TL</span></div>
<div id="tab-car-information"><div class="tab-content-car-information"><ul>
  <li><span class="property-key">Yakıt Tipi</span><span class="property-value">Benzin</span></li>
  <li><span class="property-key">Vites Tipi</span><span class="property-value">Otomatik</span></li>
  <li><span class="property-key">Boş</span><span class="property-value"></span></li>
</ul></div></div>
<div id="tab-equipment-information"><ul class="equipment-list">
  <li>ABS</li>
  <li>Yokuş Kalkış Desteği</li>
</ul></div>
</body></html>`

func TestParseDetailPage(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(detailPageHTML))
	require.NoError(t, err)

	detail := parseDetailPage(doc, arbor.NewLogger())

	assert.Equal(t, "Aile aracı, bakımları yetkili serviste yapıldı.", detail.Description)
	assert.Equal(t, "22.500 TL", detail.TramerAmount)

	require.Len(t, detail.DamageRecords, 2)
	assert.Equal(t, "13", detail.DamageRecords[0].Code)
	assert.Equal(t, "Sağ ön çamurluk", detail.DamageRecords[0].Name)
	assert.Equal(t, "Boyalı", detail.DamageRecords[0].ValueText)
	assert.Equal(t, "Tavan", detail.DamageRecords[1].Name)

	// The entry with an empty value is dropped
	assert.Equal(t, map[string]string{
		"Yakıt Tipi": "Benzin",
		"Vites Tipi": "Otomatik",
	}, detail.Specs)

	assert.Equal(t, []string{"ABS", "Yokuş Kalkış Desteği"}, detail.Equipment)
}

func TestParseDetailPageEmpty(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body></body></html>`))
	require.NoError(t, err)

	detail := parseDetailPage(doc, arbor.NewLogger())

	assert.Empty(t, detail.Description)
	assert.Empty(t, detail.DamageRecords)
	assert.Empty(t, detail.TramerAmount)
	assert.Nil(t, detail.Specs)
	assert.Empty(t, detail.Equipment)
}

func TestParseDetailPageMalformedDamageJSON(t *testing.T) {
	html := `<script>window.damage = [{"Code":];</script>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	detail := parseDetailPage(doc, arbor.NewLogger())

	assert.Empty(t, detail.DamageRecords)
}

func TestParseGalleryImages(t *testing.T) {
	html := `
<div id="thumbnail"><div class="swiper-wrapper">
  <div class="swiper-slide"><img src="https://cdn.example.com/a_120x90.jpg"></div>
  <div class="swiper-slide"><img data-src="https://cdn.example.com/b_120x90.jpg"></div>
  <div class="swiper-slide"><img src="https://cdn.example.com/noImage_120x90.jpg"></div>
  <div class="swiper-slide"><img src="https://cdn.example.com/c_120x90.jpg"></div>
  <div class="swiper-slide"><img src="https://cdn.example.com/d_120x90.jpg"></div>
</div></div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	images := parseGalleryImages(doc, 3)

	assert.Equal(t, []string{
		"https://cdn.example.com/a_580x435.jpg",
		"https://cdn.example.com/b_580x435.jpg",
		"https://cdn.example.com/c_580x435.jpg",
	}, images)
}

func TestParseGalleryImagesNoCap(t *testing.T) {
	html := `
<div id="thumbnail"><div class="swiper-wrapper">
  <div class="swiper-slide"><img src="https://cdn.example.com/a_120x90.jpg"></div>
  <div class="swiper-slide"><img src="https://cdn.example.com/b_120x90.jpg"></div>
</div></div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	assert.Len(t, parseGalleryImages(doc, 0), 2)
}
