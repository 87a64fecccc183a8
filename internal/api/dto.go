package api

import "github.com/starford/gantt/internal/models"

// ChartRecord is the catalog entry returned by the chart endpoints.
type ChartRecord = models.ChartRecord

// ChartListResponse wraps paginated chart listings.
type ChartListResponse struct {
	Charts []ChartRecord `json:"charts" validate:"required"`
	Total  int           `json:"total" example:"42" validate:"required"`
}

// ProfileInfo summarises one configured chart profile.
type ProfileInfo struct {
	Name            string `json:"name" example:"0" validate:"required"`
	Prefix          string `json:"prefix" example:"team_"`
	Config          string `json:"config" example:"config_0.json" validate:"required"`
	CSVDirectory    string `json:"csv_directory" example:"csv/0" validate:"required"`
	TargetDirectory string `json:"target_directory" example:"diagrams/0" validate:"required"`
	SortBy          string `json:"sort_by" example:"start_date"`
	Filters         int    `json:"filters" example:"2"`
	Milestones      int    `json:"milestones" example:"1"`
}

// ProfileListResponse wraps the profile listing.
type ProfileListResponse struct {
	Profiles []ProfileInfo `json:"profiles" validate:"required"`
}

// RenderResponse reports a batch run.
type RenderResponse struct {
	Rendered  int           `json:"rendered" example:"3"`
	Skipped   int           `json:"skipped" example:"1"`
	Failed    int           `json:"failed" example:"0"`
	Unmatched int           `json:"unmatched" example:"0"`
	Removed   int           `json:"removed" example:"0"`
	Results   []ChartRecord `json:"results"`
}

// UploadResponse is returned after an export upload has been rendered.
type UploadResponse struct {
	Filename string      `json:"filename" example:"plan.csv" validate:"required"`
	Size     int64       `json:"size" example:"12345" validate:"required"`
	Chart    ChartRecord `json:"chart" validate:"required"`
	URL      string      `json:"url" example:"/api/images/diagrams/0/plan.svg"`
}
