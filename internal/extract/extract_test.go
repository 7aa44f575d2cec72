package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"
)

func buildTestDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>`)
		body.WriteString(p)
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entries := map[string]string{
		"word/document.xml":            body.String(),
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractTextFromBytes_Docx(t *testing.T) {
	data := buildTestDocx(t, "Jane Doe", "Senior Software Engineer")

	text, err := ExtractTextFromBytes(context.Background(), data, mimeDOCX, "resume.docx")
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	if !strings.Contains(text, "Jane Doe") || !strings.Contains(text, "Senior Software Engineer") {
		t.Fatalf("unexpected extracted text: %q", text)
	}
}

func TestExtractTextFromBytes_ZipDocxNormalizes(t *testing.T) {
	data := buildTestDocx(t, "Jane Doe")

	if _, err := ExtractTextFromBytes(context.Background(), data, "application/zip", "resume.docx"); err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
}

func TestExtractTextFromBytes_RealZipRejected(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	_, err = ExtractTextFromBytes(context.Background(), buf.Bytes(), "application/zip", "notes.zip")
	if err == nil {
		t.Fatal("expected unsupported mime error for zip")
	}
	if !strings.Contains(err.Error(), "unsupported mime type: application/zip") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtractTextFromBytes_UnsupportedMime(t *testing.T) {
	_, err := ExtractTextFromBytes(context.Background(), []byte("plain text"), "text/plain", "resume.txt")
	if err == nil {
		t.Fatal("expected unsupported mime error")
	}
}
