package saved

import "html/template"

// ListViewData feeds the saved-charts page.
type ListViewData struct {
	Title   string
	Nav     string
	Configs []ConfigItem
}

// ConfigItem is one row in the saved-charts table.
type ConfigItem struct {
	ID      string
	Name    string
	Type    string
	XAxis   string
	YAxes   string
	SavedAt string
}

// ViewData feeds the single-chart view page.
type ViewData struct {
	Title       string
	Nav         string
	Config      ConfigItem
	DatasetName string
	Figure      template.JS
}
