package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/ilansync/internal/models"
)

func propertyListing(title string, mutate ...func(*models.Listing)) *models.Listing {
	l := &models.Listing{
		Kind:         models.KindProperty,
		Source:       "emlakjet",
		Partition:    "kadikoy",
		Title:        title,
		URL:          "https://example.com/ilan/" + title,
		TradeType:    "Satılık",
		EstateType:   "Konut",
		CategoryType: "Daire",
		Price:        models.PriceDetail{Amount: 5_000_000, Currency: "TL"},
	}
	for _, fn := range mutate {
		fn(l)
	}
	return l
}

func TestReconcileFirstRunInsertsEverything(t *testing.T) {
	fresh := []*models.Listing{propertyListing("a"), propertyListing("b")}

	decisions := Reconcile(nil, fresh)

	require.Len(t, decisions, 2)
	for _, d := range decisions {
		assert.Equal(t, models.ActionInsert, d.Action)
		assert.Nil(t, d.Existing)
		assert.NotNil(t, d.Fresh)
	}
}

func TestReconcileIdenticalSetsAreUnchanged(t *testing.T) {
	existing := []*models.Listing{propertyListing("a"), propertyListing("b")}
	fresh := []*models.Listing{propertyListing("a"), propertyListing("b")}

	decisions := Reconcile(existing, fresh)

	require.Len(t, decisions, 2)
	for _, d := range decisions {
		assert.Equal(t, models.ActionUnchanged, d.Action)
	}
}

func TestReconcileVanishedListingIsDeleted(t *testing.T) {
	existing := []*models.Listing{propertyListing("a"), propertyListing("b")}
	fresh := []*models.Listing{propertyListing("a")}

	decisions := Reconcile(existing, fresh)

	require.Len(t, decisions, 2)
	assert.Equal(t, models.ActionUnchanged, decisions[0].Action)
	assert.Equal(t, models.ActionDelete, decisions[1].Action)
	assert.Equal(t, "b", decisions[1].Existing.Title)
}

func TestReconcileChangedPriceIsUpdate(t *testing.T) {
	existing := []*models.Listing{propertyListing("a")}
	fresh := []*models.Listing{propertyListing("a", func(l *models.Listing) {
		l.Price.Amount = 6_000_000
	})}

	decisions := Reconcile(existing, fresh)

	require.Len(t, decisions, 1)
	assert.Equal(t, models.ActionUpdate, decisions[0].Action)
}

func TestReconcileDescriptionChangeIsNotSignificant(t *testing.T) {
	existing := []*models.Listing{propertyListing("a", func(l *models.Listing) {
		l.Description = "old description"
	})}
	fresh := []*models.Listing{propertyListing("a", func(l *models.Listing) {
		l.Description = "freshly enriched description"
	})}

	decisions := Reconcile(existing, fresh)

	require.Len(t, decisions, 1)
	assert.Equal(t, models.ActionUnchanged, decisions[0].Action)
}

func TestReconcileImageOrderIsNotSignificant(t *testing.T) {
	existing := []*models.Listing{propertyListing("a", func(l *models.Listing) {
		l.Images = []string{"1.jpg", "2.jpg"}
	})}
	fresh := []*models.Listing{propertyListing("a", func(l *models.Listing) {
		l.Images = []string{"2.jpg", "1.jpg"}
	})}

	decisions := Reconcile(existing, fresh)

	require.Len(t, decisions, 1)
	assert.Equal(t, models.ActionUnchanged, decisions[0].Action)
}

func TestReconcileQuickInfoOrderIsSignificant(t *testing.T) {
	existing := []*models.Listing{propertyListing("a", func(l *models.Listing) {
		l.QuickInfos = []models.QuickInfo{{Key: "rooms", Value: "3+1"}, {Key: "floor", Value: "2"}}
	})}
	fresh := []*models.Listing{propertyListing("a", func(l *models.Listing) {
		l.QuickInfos = []models.QuickInfo{{Key: "floor", Value: "2"}, {Key: "rooms", Value: "3+1"}}
	})}

	decisions := Reconcile(existing, fresh)

	require.Len(t, decisions, 1)
	assert.Equal(t, models.ActionUpdate, decisions[0].Action)
}

func TestReconcileSameTitleDifferentTradeTypeAreDistinct(t *testing.T) {
	existing := []*models.Listing{propertyListing("a")}
	fresh := []*models.Listing{
		propertyListing("a"),
		propertyListing("a", func(l *models.Listing) { l.TradeType = "Kiralık" }),
	}

	decisions := Reconcile(existing, fresh)

	require.Len(t, decisions, 2)
	assert.Equal(t, models.ActionUnchanged, decisions[0].Action)
	assert.Equal(t, models.ActionInsert, decisions[1].Action)
}

func TestReconcileVehicleKeysOnSourceID(t *testing.T) {
	vehicle := func(id string, price float64) *models.Listing {
		return &models.Listing{
			Kind:     models.KindVehicle,
			Source:   "arabam",
			SourceID: id,
			Title:    "some car",
			URL:      "https://example.com/ilan/" + id,
			Price:    models.PriceDetail{Amount: price, Currency: "TL"},
		}
	}

	existing := []*models.Listing{vehicle("100", 900_000)}
	fresh := []*models.Listing{vehicle("100", 950_000), vehicle("200", 800_000)}

	decisions := Reconcile(existing, fresh)

	require.Len(t, decisions, 2)
	assert.Equal(t, models.ActionUpdate, decisions[0].Action)
	assert.Equal(t, "100", decisions[0].Key)
	assert.Equal(t, models.ActionInsert, decisions[1].Action)
	assert.Equal(t, "200", decisions[1].Key)
}

func TestReconcileDuplicateFreshKeysLastWins(t *testing.T) {
	existing := []*models.Listing{}
	fresh := []*models.Listing{
		propertyListing("a", func(l *models.Listing) { l.Price.Amount = 1 }),
		propertyListing("a", func(l *models.Listing) { l.Price.Amount = 2 }),
	}

	decisions := Reconcile(existing, fresh)

	require.Len(t, decisions, 1)
	assert.Equal(t, models.ActionInsert, decisions[0].Action)
	assert.Equal(t, float64(2), decisions[0].Fresh.Price.Amount)
}

func TestMergeUpdatePreservesIdentityAndEmbedding(t *testing.T) {
	created := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	existing := propertyListing("a", func(l *models.Listing) {
		l.ID = "lst_existing"
		l.Embedding = []float32{0.1, 0.2}
		l.CreatedAt = created
	})
	fresh := propertyListing("a", func(l *models.Listing) {
		l.Price.Amount = 7_000_000
		l.Description = "new description"
	})

	merged := MergeUpdate(existing, fresh)

	assert.Equal(t, "lst_existing", merged.ID)
	assert.Equal(t, []float32{0.1, 0.2}, merged.Embedding)
	assert.Equal(t, created, merged.CreatedAt)
	assert.Equal(t, float64(7_000_000), merged.Price.Amount)
	assert.Equal(t, "new description", merged.Description)
}
