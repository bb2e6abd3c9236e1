package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDOCX_Extract(t *testing.T) {
	data := buildDOCX(t, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`+
		`<w:p><w:r><w:t>Le chat dort.</w:t></w:r></w:p><w:p><w:r><w:t>Der Hund bellt.</w:t></w:r></w:p></w:body></w:document>`)
	text, err := DOCX.Extract(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expected := "Le chat dort.\nDer Hund bellt.\n"; string(text) != expected {
		t.Errorf("expected %q, got %q", expected, text)
	}
	if _, err := DOCX.Extract([]byte("not a zip")); err == nil {
		t.Errorf("expected error for invalid docx")
	}
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestXLSX_Extract(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"mot", "langue"}); err != nil {
		t.Fatalf("set header: %v", err)
	}
	if err := f.SetSheetRow(sheet, "A2", &[]interface{}{"chat", "fr"}); err != nil {
		t.Fatalf("set row: %v", err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	text, err := XLSX.Extract(buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expected := "mot\tlangue\nchat\tfr\n\n"; string(text) != expected {
		t.Errorf("expected %q, got %q", expected, text)
	}
}

func TestHTML_Extract(t *testing.T) {
	data := []byte(`<html><head><script>alert(1)</script></head><body><h1>Titre</h1><p>Le chat est sur la table.</p></body></html>`)
	text, err := NewHTML().Extract(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(text), "Le chat est sur la table.") {
		t.Errorf("expected paragraph text, got %q", text)
	}
	if strings.Contains(string(text), "alert") || strings.Contains(string(text), "<p>") {
		t.Errorf("expected sanitized text, got %q", text)
	}
}

func TestText_Extract(t *testing.T) {
	text, _ := Text.Extract([]byte("\xef\xbb\xbfПривет"))
	if string(text) != "Привет" {
		t.Errorf("expected BOM stripped, got %q", text)
	}
	text, _ = Text.Extract([]byte("ok\xff\x00go"))
	if string(text) != "okgo" {
		t.Errorf("expected printable runes, got %q", text)
	}
}

func TestFactory_GetExtractor(t *testing.T) {
	factory := NewFactory()
	text, err := factory.Extract("notes/README.TXT", []byte("plain"))
	if err != nil || string(text) != "plain" {
		t.Fatalf("expected text passthrough, got %q %v", text, err)
	}
	if _, ok := factory.GetExtractor("page.HTML").(*HTML); !ok {
		t.Errorf("expected html extractor")
	}
	if len(factory.Extensions()) != 7 {
		t.Errorf("expected 7 extensions, got %v", factory.Extensions())
	}
}
