package upload

import "time"

const previewRows = 10

// DatasetItem summarizes one loaded dataset.
type DatasetItem struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Rows     int       `json:"rows"`
	Columns  int       `json:"columns"`
	LoadedAt time.Time `json:"loaded_at"`
}

// ColumnView is one schema column in a detail response.
type ColumnView struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// DatasetDetailView is the full detail payload: summary, schema and a
// short rendered preview of the rows.
type DatasetDetailView struct {
	DatasetItem
	Schema  []ColumnView `json:"schema"`
	Preview [][]string   `json:"preview"`
}
