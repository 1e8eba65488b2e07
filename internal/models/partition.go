package models

// Partition is an independent reconciliation scope: one district for the
// property source, one brand×model pair for the vehicle source. Composite
// keys are unique within a partition, and a sync pass never touches records
// outside its partition.
type Partition struct {
	Source string `json:"source"`
	Key    string `json:"key"`

	// Property partitions
	District string `json:"district,omitempty"`

	// Vehicle partitions, discovered by the catalog walk
	Brand string `json:"brand,omitempty"`
	Model string `json:"model,omitempty"`
	URL   string `json:"url,omitempty"`
}
