package oss

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/helpers/apperr"
)

var extMIME = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// ReadUpload membaca file multipart report, memvalidasi ukuran & tipe.
func ReadUpload(fh *multipart.FileHeader, folder string, maxBytes int64) (StoreInput, error) {
	if fh == nil || fh.Filename == "" {
		return StoreInput{}, apperr.ValidationFields("file wajib diunggah", map[string][]string{"file": {"required"}})
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return StoreInput{}, apperr.ValidationFields(
			fmt.Sprintf("ukuran file maksimal %d MB", maxBytes/(1<<20)),
			map[string][]string{"file": {"max_size"}},
		)
	}

	src, err := fh.Open()
	if err != nil {
		return StoreInput{}, apperr.Internal("gagal membuka file", err)
	}
	defer src.Close()

	limit := maxBytes
	if limit <= 0 {
		limit = fh.Size
	}
	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return StoreInput{}, apperr.Internal("gagal membaca file", err)
	}
	if int64(len(data)) > limit {
		return StoreInput{}, apperr.ValidationFields("ukuran file melebihi batas", map[string][]string{"file": {"max_size"}})
	}

	ct := resolveContentType(fh.Header.Get("Content-Type"), fh.Filename, data)
	kind := constants.DetectReportFileKind(ct)
	if kind == constants.FileKindUnknown {
		return StoreInput{}, apperr.ValidationFields(
			"tipe file tidak didukung (pdf, doc, docx, jpeg, png, gif)",
			map[string][]string{"file": {"mime"}},
		)
	}
	// ekstensi harus sejenis dengan content type (mis. gambar.pdf ditolak)
	if kind != constants.DetectFileKindFromExt(fh.Filename) {
		return StoreInput{}, apperr.ValidationFields(
			"ekstensi file tidak sesuai dengan isinya",
			map[string][]string{"file": {"extension"}},
		)
	}

	return StoreInput{
		Folder:      folder,
		Filename:    filepath.Base(fh.Filename),
		ContentType: ct,
		Data:        data,
	}, nil
}

func resolveContentType(header, filename string, data []byte) string {
	ct := strings.ToLower(strings.TrimSpace(header))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "" || ct == "application/octet-stream" {
		if byExt, ok := extMIME[strings.ToLower(filepath.Ext(filename))]; ok {
			return byExt
		}
		sniffed := http.DetectContentType(data)
		if i := strings.Index(sniffed, ";"); i >= 0 {
			sniffed = sniffed[:i]
		}
		return sniffed
	}
	return ct
}
