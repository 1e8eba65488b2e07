package models

// SyncAction classifies what a reconciliation pass does with one record
type SyncAction string

const (
	ActionInsert    SyncAction = "insert"
	ActionUpdate    SyncAction = "update"
	ActionDelete    SyncAction = "delete"
	ActionUnchanged SyncAction = "unchanged"
)

// SyncDecision is the per-key result of reconciling the fresh scrape against
// the persisted set. Existing is nil for inserts, Fresh is nil for deletes,
// and both are set for updates.
type SyncDecision struct {
	Action   SyncAction
	Key      string
	Existing *Listing
	Fresh    *Listing
}

// SyncCounts aggregates the store operations applied for one partition
type SyncCounts struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
}

// Total returns the number of store mutations (unchanged records cost nothing)
func (c SyncCounts) Total() int {
	return c.Inserted + c.Updated + c.Deleted
}

// Add accumulates another partition's counts
func (c *SyncCounts) Add(other SyncCounts) {
	c.Inserted += other.Inserted
	c.Updated += other.Updated
	c.Deleted += other.Deleted
	c.Unchanged += other.Unchanged
}
