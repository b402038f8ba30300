package photo

import "time"

// ListingResponse is the public slideshow feed.
type ListingResponse struct {
	Photos          []string `json:"photos"`
	PhotoURLs       []string `json:"photo_urls"`
	RecentPhotos    []string `json:"recent_photos"`
	RecentPhotoURLs []string `json:"recent_photo_urls"`
	TopPhotos       []string `json:"top_photos"`
	TopPhotoURLs    []string `json:"top_photo_urls"`
}

// AdminPhoto is one row of the admin management view.
type AdminPhoto struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}
