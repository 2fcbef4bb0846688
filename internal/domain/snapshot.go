package domain

// Snapshot is the full export/import document. A collection missing from a
// decoded document stays nil, which import tells apart from an empty list.
type Snapshot struct {
	Customers []Customer `json:"customers" yaml:"customers"`
	Jobs      []Job      `json:"jobs" yaml:"jobs"`
}
