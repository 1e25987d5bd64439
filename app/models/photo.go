package models

import (
	"io"
	"time"
)

// PhotoCategory classifies a photo.
type PhotoCategory string

const (
	PhotoCategorySelfie    PhotoCategory = "SELFIE"
	PhotoCategoryPortrait  PhotoCategory = "PORTRAIT"
	PhotoCategoryAction    PhotoCategory = "ACTION"
	PhotoCategoryLandscape PhotoCategory = "LANDSCAPE"
	PhotoCategoryGraphic   PhotoCategory = "GRAPHIC"
)

// PhotoCategories lists every valid category in schema order.
var PhotoCategories = []PhotoCategory{
	PhotoCategorySelfie,
	PhotoCategoryPortrait,
	PhotoCategoryAction,
	PhotoCategoryLandscape,
	PhotoCategoryGraphic,
}

// Valid reports whether c is a known category.
func (c PhotoCategory) Valid() bool {
	for _, known := range PhotoCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Photo is a posted photo. URL is derived from ID by the photo service.
type Photo struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Category    PhotoCategory `json:"category"`
	GithubUser  string        `json:"githubUser"`
	URL         string        `json:"url"`
	Created     time.Time     `json:"created"`
}

// Upload is a file received through a GraphQL multipart request.
type Upload struct {
	File     io.Reader
	Filename string
	Size     int64
	MimeType string
}

// PostPhotoInput carries the postPhoto mutation arguments.
type PostPhotoInput struct {
	Name        string
	Description string
	Category    PhotoCategory
	File        *Upload
}
