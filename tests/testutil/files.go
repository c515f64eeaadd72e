package testutil

import (
	"bytes"
	"mime/multipart"
	"testing"
)

// MultipartImageBody builds a multipart form with one file under the "image" field.
// It returns the body and its content type header.
func MultipartImageBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

// ImageFileHeader returns a parsed upload as a handler would receive it
func ImageFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body, contentType := MultipartImageBody(t, filename, content)
	boundary := contentType[len("multipart/form-data; boundary="):]

	form, err := multipart.NewReader(body, boundary).ReadForm(int64(len(content)) + 1024)
	if err != nil {
		t.Fatalf("Failed to parse multipart form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["image"]
	if len(files) == 0 {
		t.Fatal("Multipart form has no image file")
	}
	return files[0]
}
