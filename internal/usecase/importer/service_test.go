package importer

import (
	"context"
	"reflect"
	"testing"

	csvparser "wikitrans/internal/adapters/parser/csv"
	"wikitrans/internal/adapters/parser/jsonmap"
	parreg "wikitrans/internal/adapters/parser/registry"
	"wikitrans/internal/domain"
	"wikitrans/internal/usecase/buffer"
)

func newBuffer(t *testing.T) *buffer.Buffer {
	t.Helper()
	b := buffer.New()
	if err := b.Load("hi-Tea", []*domain.Sentence{
		{ID: 1, OriginalText: "Tea", TranslatedText: ""},
		{ID: 2, OriginalText: "Milk", TranslatedText: "दूध"},
	}); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestImportAppliesEdits(t *testing.T) {
	svc := New(parreg.New(csvparser.New(), jsonmap.New()), nil)
	b := newBuffer(t)
	res, err := svc.Import(context.Background(), b, ImportArgs{
		Filename: "edits.json",
		Format:   "json",
		Content:  []byte(`{"1":"चाय","99":"x"}`),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Applied != 1 || !reflect.DeepEqual(res.Unknown, []int64{99}) || len(res.Hash) != 64 {
		t.Errorf("result = %+v", res)
	}
	if !reflect.DeepEqual(b.DirtyIDs(), []int64{1}) {
		t.Errorf("dirty = %v", b.DirtyIDs())
	}
	if r, _ := b.Get(1); r.TranslatedText != "चाय" {
		t.Errorf("record 1 = %+v", r)
	}
}

func TestImportErrors(t *testing.T) {
	svc := New(parreg.New(csvparser.New()), nil)
	if _, err := svc.Import(context.Background(), newBuffer(t), ImportArgs{Format: "xml"}); err == nil {
		t.Error("expected unsupported format error")
	}
	if _, err := svc.Import(context.Background(), newBuffer(t), ImportArgs{Format: "csv", Content: []byte("key\n")}); err == nil {
		t.Error("expected parse error")
	}
}
