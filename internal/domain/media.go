package domain

import "time"

// MediaArticle is a photo, video, news clipping or document linked to a project.
type MediaArticle struct {
	ID          string
	ProjectID   string `validate:"required"`
	Title       string `validate:"notblank"`
	MediaType   MediaType
	URL         string `validate:"required,url"`
	Description string
	PublishedAt *time.Time
	CreatedAt   time.Time
}
