package materials

import (
	"net/http"
	"strings"
)

// ResourceCategory is the storage class a blob store needs to address an
// object: image, raw (documents and archives) or video.
type ResourceCategory string

const (
	CategoryImage ResourceCategory = "image"
	CategoryRaw   ResourceCategory = "raw"
	CategoryVideo ResourceCategory = "video"
)

// resourceCategories is the single extension table shared by the upload and
// delete paths. If the two paths ever classified differently, deletes would
// target the wrong category and orphan blobs.
var resourceCategories = map[string]ResourceCategory{
	// documents and archives
	"pdf":  CategoryRaw,
	"zip":  CategoryRaw,
	"rar":  CategoryRaw,
	"doc":  CategoryRaw,
	"docx": CategoryRaw,
	"docm": CategoryRaw,
	"dot":  CategoryRaw,
	"dotx": CategoryRaw,
	"ppt":  CategoryRaw,
	"pptx": CategoryRaw,
	"pptm": CategoryRaw,
	"pps":  CategoryRaw,
	"ppsx": CategoryRaw,
	"xls":  CategoryRaw,
	"xlsx": CategoryRaw,
	"xlsm": CategoryRaw,

	// video
	"mp4": CategoryVideo,
	"avi": CategoryVideo,
	"mov": CategoryVideo,
}

// CategoryForType maps a material type token (a file-format string such as
// "pdf" or "jpg") to the category the blob store expects. Unknown tokens,
// including the empty string, default to CategoryImage.
func CategoryForType(t string) ResourceCategory {
	if c, ok := resourceCategories[strings.ToLower(strings.TrimSpace(t))]; ok {
		return c
	}
	return CategoryImage
}

// sniffFormats maps content-sniffed MIME types to format tokens for uploads
// whose filename carries no extension.
var sniffFormats = map[string]string{
	"image/png":       "png",
	"image/jpeg":      "jpg",
	"image/gif":       "gif",
	"image/webp":      "webp",
	"image/bmp":       "bmp",
	"application/pdf": "pdf",
	"application/zip": "zip",
	"video/mp4":       "mp4",
	"video/avi":       "avi",
	"video/webm":      "webm",
	"audio/mpeg":      "mp3",
	"audio/wave":      "wav",
}

// DetectFormat resolves the format token recorded for an uploaded payload:
// the filename extension when present, otherwise a content sniff. Returns ""
// when neither yields anything.
func DetectFormat(name string, data []byte) string {
	if ext := Extension(name); ext != "" {
		return ext
	}
	if len(data) == 0 {
		return ""
	}
	mime := http.DetectContentType(data)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return sniffFormats[strings.TrimSpace(mime)]
}
