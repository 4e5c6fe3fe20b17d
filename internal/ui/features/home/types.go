package home

// ViewData holds everything the landing page renders.
type ViewData struct {
	Title        string
	Nav          string
	DatasetCount int
	SavedCount   int
	Datasets     []DatasetItem
}

// DatasetItem is one row in the dataset list.
type DatasetItem struct {
	ID       string
	Name     string
	Rows     int
	Columns  int
	LoadedAt string
}
