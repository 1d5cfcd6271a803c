package csv

import (
	"testing"

	"wikitrans/internal/ports"
)

func TestExport(t *testing.T) {
	items := []ports.ExportItem{
		{SentenceID: 1, Original: "Hello", Translation: "नमस्ते"},
		{SentenceID: 2, Original: "a, b", Translation: ""},
	}
	b, err := New().Export(items)
	if err != nil {
		t.Fatal(err)
	}
	want := "id,original,translation\n1,Hello,नमस्ते\n2,\"a, b\",\n"
	if string(b) != want {
		t.Errorf("got %q", b)
	}
	b, _ = New().WithSeparator("tab").Export(items[:1])
	if string(b) != "id\toriginal\ttranslation\n1\tHello\tनमस्ते\n" {
		t.Errorf("tab export = %q", b)
	}
}
