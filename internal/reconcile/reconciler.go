package reconcile

import (
	"sort"

	"github.com/ternarybob/ilansync/internal/models"
)

// Reconcile compares the freshly scraped set against the persisted set for
// one partition and classifies every composite key as Insert, Update, Delete
// or Unchanged. Duplicate keys within either input resolve last-wins; a
// source page listing the same key twice is accepted, not an error.
//
// Decisions come back in a stable order: existing keys first (delete, update
// and unchanged in their persisted order), then new keys in scrape order.
func Reconcile(existing, fresh []*models.Listing) []models.SyncDecision {
	existingMap, existingKeys := keyByListing(existing)
	freshMap, freshKeys := keyByListing(fresh)

	decisions := make([]models.SyncDecision, 0, len(existingKeys)+len(freshKeys))

	for _, key := range existingKeys {
		old := existingMap[key]
		current, stillListed := freshMap[key]

		switch {
		case !stillListed:
			decisions = append(decisions, models.SyncDecision{
				Action:   models.ActionDelete,
				Key:      key,
				Existing: old,
			})
		case changed(old, current):
			decisions = append(decisions, models.SyncDecision{
				Action:   models.ActionUpdate,
				Key:      key,
				Existing: old,
				Fresh:    current,
			})
		default:
			decisions = append(decisions, models.SyncDecision{
				Action:   models.ActionUnchanged,
				Key:      key,
				Existing: old,
			})
		}
	}

	for _, key := range freshKeys {
		if _, exists := existingMap[key]; !exists {
			decisions = append(decisions, models.SyncDecision{
				Action: models.ActionInsert,
				Key:    key,
				Fresh:  freshMap[key],
			})
		}
	}

	return decisions
}

// MergeUpdate produces the record to persist for an Update decision: the
// fresh listing's fields with the existing record's internal id, embedding
// and creation time carried over. Embeddings are never regenerated on update
// because the composite key does not depend on the fields an embedding is
// built from, and regenerating them is the costly part of the pipeline.
func MergeUpdate(existing, fresh *models.Listing) *models.Listing {
	merged := *fresh
	merged.ID = existing.ID
	merged.Embedding = existing.Embedding
	merged.CreatedAt = existing.CreatedAt
	return &merged
}

// keyByListing builds the lookup map plus the first-occurrence key order.
// Later duplicates overwrite the mapped value but keep the original position.
func keyByListing(listings []*models.Listing) (map[string]*models.Listing, []string) {
	byKey := make(map[string]*models.Listing, len(listings))
	keys := make([]string, 0, len(listings))

	for _, listing := range listings {
		key := listing.ReconcileKey()
		if _, seen := byKey[key]; !seen {
			keys = append(keys, key)
		}
		byKey[key] = listing
	}

	return byKey, keys
}

// changed compares the significant fields of two listings with the same
// composite key. Array-valued fields compare after sorting so that
// source-side reordering alone never triggers an update; descriptions and
// other enrichment text are deliberately not significant.
func changed(existing, fresh *models.Listing) bool {
	if existing.SourceID != fresh.SourceID ||
		existing.URL != fresh.URL ||
		existing.Title != fresh.Title ||
		existing.ListingType != fresh.ListingType ||
		existing.Phone != fresh.Phone ||
		existing.RoomCount != fresh.RoomCount ||
		existing.Floor != fresh.Floor ||
		existing.SquareMeter != fresh.SquareMeter ||
		existing.Year != fresh.Year ||
		existing.LocationText != fresh.LocationText {
		return true
	}

	if existing.Price != fresh.Price {
		return true
	}

	if !sortedEqual(existing.Images, fresh.Images) {
		return true
	}
	if !sortedEqual(existing.Badges, fresh.Badges) {
		return true
	}
	if !quickInfosEqual(existing.QuickInfos, fresh.QuickInfos) {
		return true
	}
	if !locationEqual(existing.Location, fresh.Location) {
		return true
	}

	return false
}

// sortedEqual reports whether two string slices hold the same content,
// ignoring order
func sortedEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func quickInfosEqual(a, b []models.QuickInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func locationEqual(a, b *models.Location) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
