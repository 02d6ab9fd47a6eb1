package constants

import (
	"path/filepath"
	"strings"
)

type FileKind int

const (
	FileKindUnknown FileKind = iota
	FileKindPDF
	FileKindDoc
	FileKindImage
)

// Report attachments accepted by the upload endpoints.
var allowedReportMIME = map[string]FileKind{
	"application/pdf":    FileKindPDF,
	"application/msword": FileKindDoc,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": FileKindDoc,
	"image/jpeg": FileKindImage,
	"image/png":  FileKindImage,
	"image/gif":  FileKindImage,
}

// DetectReportFileKind returns the kind for an accepted MIME type, or FileKindUnknown.
func DetectReportFileKind(mime string) FileKind {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return allowedReportMIME[mime]
}

func DetectFileKindFromExt(filename string) FileKind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FileKindPDF
	case ".doc", ".docx":
		return FileKindDoc
	case ".png", ".jpg", ".jpeg", ".gif":
		return FileKindImage
	default:
		return FileKindUnknown
	}
}
