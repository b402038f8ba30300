package photo

import (
	"path/filepath"
	"strings"
	"time"
)

// Photo is an image file in the upload directory. The directory is the source
// of truth: a Photo exists exactly as long as its file does.
type Photo struct {
	Filename   string
	UploadedAt time.Time // file modification time
}

// SortBy selects the order of a listing.
type SortBy int

const (
	// SortByName lists filenames in ascending lexicographic order.
	SortByName SortBy = iota
	// SortByUploadTimeDesc lists newest first; equal times fall back to filename ascending.
	SortByUploadTimeDesc
)

// ParseSortBy maps a query value to a SortBy. Unknown values fall back to SortByName.
func ParseSortBy(v string) SortBy {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "recent", "newest", "upload_time":
		return SortByUploadTimeDesc
	default:
		return SortByName
	}
}

// AllowedExtensions are the image extensions recognised by the store (lower case).
var AllowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// IsAllowedImage reports whether filename carries an allowed image extension,
// ignoring case.
func IsAllowedImage(filename string) bool {
	return AllowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// URLResolver maps a filename to the public URL it is served under.
type URLResolver func(filename string) string

// StaticURLResolver serves files below base, e.g. "/static/uploads".
func StaticURLResolver(base string) URLResolver {
	base = strings.TrimRight(base, "/")
	return func(filename string) string {
		return base + "/" + filename
	}
}
