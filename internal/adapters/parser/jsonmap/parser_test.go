package jsonmap

import (
	"reflect"
	"testing"

	"wikitrans/internal/ports"
)

func TestParse(t *testing.T) {
	res, err := New().Parse([]byte(`{"$schema":"x","12":"b","3":"a","4":7}`))
	if err != nil {
		t.Fatal(err)
	}
	want := []ports.Edit{{SentenceID: 3, Text: "a"}, {SentenceID: 12, Text: "b"}}
	if !reflect.DeepEqual(res.Edits, want) {
		t.Errorf("edits = %+v", res.Edits)
	}
}

func TestParseErrors(t *testing.T) {
	for _, data := range []string{`[1,2]`, `{"one":"x"}`, `not json`} {
		if _, err := New().Parse([]byte(data)); err == nil {
			t.Errorf("%s: expected error", data)
		}
	}
}
