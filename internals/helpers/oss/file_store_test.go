package oss

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesis_backend/internals/helpers/apperr"
)

func TestBuildObjectKey(t *testing.T) {
	key := BuildObjectKey("thesis", "/reports/", "Bab 1 Pendahuluan.PDF")
	assert.True(t, strings.HasPrefix(key, "thesis/reports/bab-1-pendahuluan_"), key)
	assert.True(t, strings.HasSuffix(key, ".pdf"), key)

	key = BuildObjectKey("", "", "###.png")
	assert.True(t, strings.HasPrefix(key, "file_"), key)
}

func TestMemoryFileStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryFileStore()

	f, err := store.Store(ctx, StoreInput{Folder: "reports", Filename: "a.pdf", ContentType: "application/pdf", Data: []byte("x")})
	require.NoError(t, err)
	assert.True(t, store.Has(f.ExternalID))
	assert.Equal(t, "memory://"+f.ExternalID, f.URL)

	require.NoError(t, store.Delete(ctx, f.ExternalID))
	assert.ErrorIs(t, store.Delete(ctx, f.ExternalID), ErrNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestResourceTypeFor(t *testing.T) {
	assert.Equal(t, "image", resourceTypeFor("image/webp"))
	assert.Equal(t, "raw", resourceTypeFor("application/pdf"))
}

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeImage(t *testing.T) {
	in := StoreInput{Filename: "scan.png", ContentType: "image/png", Data: samplePNG(t, 2000, 100)}
	out, err := NormalizeImage(in)
	require.NoError(t, err)
	assert.Equal(t, "image/webp", out.ContentType)
	assert.Equal(t, "scan.webp", out.Filename)
	assert.Equal(t, "RIFF", string(out.Data[:4]))

	pdf := StoreInput{Filename: "a.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")}
	same, err := NormalizeImage(pdf)
	require.NoError(t, err)
	assert.Equal(t, pdf, same)

	_, err = NormalizeImage(StoreInput{Filename: "x.png", ContentType: "image/png", Data: []byte("nope")})
	assert.Error(t, err)
}

func fileHeader(t *testing.T, filename, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestReadUpload(t *testing.T) {
	in, err := ReadUpload(fileHeader(t, "bab1.pdf", "application/pdf", []byte("%PDF-1.4 data")), "reports", 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", in.ContentType)
	assert.Equal(t, "reports", in.Folder)
	assert.Equal(t, "bab1.pdf", in.Filename)

	in, err = ReadUpload(fileHeader(t, "bab2.docx", "application/octet-stream", []byte("PK..")), "reports", 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", in.ContentType)

	_, err = ReadUpload(fileHeader(t, "virus.exe", "application/x-msdownload", []byte("MZ")), "reports", 1<<20)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = ReadUpload(fileHeader(t, "photo.pdf", "image/png", []byte("\x89PNG")), "reports", 1<<20)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = ReadUpload(fileHeader(t, "big.pdf", "application/pdf", bytes.Repeat([]byte("a"), 64)), "reports", 16)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = ReadUpload(nil, "reports", 16)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
