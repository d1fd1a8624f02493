package testutil

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"testing"
)

// FakePhotos records uploads and deletions and returns cloudinary-shaped URLs.
type FakePhotos struct {
	Uploads []string
	Deleted []string
}

func (f *FakePhotos) UploadPhoto(ctx context.Context, r io.Reader, folder, publicID string) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	url := "https://res.cloudinary.com/demo/image/upload/v1/paceline/" + folder + "/" + publicID + ".webp"
	f.Uploads = append(f.Uploads, url)
	return url, nil
}

func (f *FakePhotos) DeletePhoto(ctx context.Context, fileURL string) error {
	f.Deleted = append(f.Deleted, fileURL)
	return nil
}

// FileHeader builds a parsed multipart upload of body under the form field "file".
func FileHeader(t *testing.T, contentType string, body []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="photo.jpg"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(body); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}
