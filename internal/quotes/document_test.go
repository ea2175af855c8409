package quotes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/five82/quotebook/internal/kv"
)

func TestImportDocument_DropsInvalidElements(t *testing.T) {
	repo, store := newTestRepo(t, []Quote{{Text: "existing", Category: "Old"}})

	res, err := repo.ImportDocument(`[{"text":"","category":"X"},{"text":"Hi","category":"Y"}]`)

	require.NoError(t, err)
	assert.Equal(t, ImportResult{Imported: 1, Dropped: 1}, res)
	want := []Quote{{Text: "existing", Category: "Old"}, {Text: "Hi", Category: "Y"}}
	assert.Equal(t, want, repo.Quotes())
	assert.Equal(t, want, storedQuotes(t, store))
	assert.Equal(t, []string{AllCategories, "Old", "Y"}, repo.Categories())
}

func TestImportDocument_AppendsWithoutDedup(t *testing.T) {
	repo, _ := newTestRepo(t, []Quote{{Text: "same", Category: "A"}})

	res, err := repo.ImportDocument(`[{"text":"same","category":"A","author":"ignored"}]`)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 2, repo.Len())
}

func TestImportDocument_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"malformed", `[{"text":`, ErrParse},
		{"empty input", ``, ErrParse},
		{"object", `{"text":"a","category":"b"}`, ErrValidation},
		{"string", `"quotes"`, ErrValidation},
		{"empty array", `[]`, ErrEmptyImport},
		{"all invalid", `[{"text":" ","category":"X"},{"category":"Y"},1]`, ErrEmptyImport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _ := newTestRepo(t, []Quote{{Text: "a", Category: "b"}})
			before := repo.Quotes()

			_, err := repo.ImportDocument(tt.raw)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, repo.Quotes())
		})
	}
}

func TestImport_EmptyReportsDroppedCount(t *testing.T) {
	repo, _ := newTestRepo(t, []Quote{{Text: "a", Category: "b"}})
	res, err := repo.ImportDocument(`[{"text":""},{"category":"x"}]`)
	require.ErrorIs(t, err, ErrEmptyImport)
	assert.Equal(t, ImportResult{Imported: 0, Dropped: 2}, res)
}

func TestImport_DurableFailure(t *testing.T) {
	store := &flakyStore{}
	repo := Load(store, nil)
	store.failWrites = true

	_, err := repo.ImportDocument(`[{"text":"x","category":"y"}]`)
	require.ErrorIs(t, err, ErrPersistenceWrite)
	assert.Equal(t, len(Default), repo.Len())
}

func TestExportDocument_PrettyPrinted(t *testing.T) {
	out, err := ExportDocument([]Quote{{Text: "a", Category: "b"}})
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"text\": \"a\",\n    \"category\": \"b\"\n  }\n]", out)

	empty, err := ExportDocument(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)
}

func TestYAML_ImportAndExport(t *testing.T) {
	repo, _ := newTestRepo(t, []Quote{{Text: "a", Category: "b"}})

	res, err := repo.Import([]byte("- text: Hi\n  category: Y\n- text: \"\"\n  category: X\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Imported: 1, Dropped: 1}, res)

	out, err := Encode(repo.Quotes(), FormatYAML)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), "text: Hi"), "yaml output = %q", out)

	_, _, err = Decode([]byte("text: a\n"), FormatYAML)
	require.ErrorIs(t, err, ErrValidation)
	_, _, err = Decode([]byte("- [unclosed\n"), FormatYAML)
	require.ErrorIs(t, err, ErrParse)
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatForPath("backup/quotes.YML"))
	assert.Equal(t, FormatYAML, FormatForPath("quotes.yaml"))
	assert.Equal(t, FormatJSON, FormatForPath("quotes.json"))
	assert.Equal(t, FormatJSON, FormatForPath("quotes"))
}

func TestExportImport_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		quotes := rapid.SliceOfN(quoteGen(), 1, 25).Draw(t, "quotes")
		format := rapid.SampledFrom([]Format{FormatJSON, FormatYAML}).Draw(t, "format")

		src := Load(kv.NewMemory(), nil)
		if err := src.ReplaceAll(quotes); err != nil {
			t.Fatalf("ReplaceAll: %v", err)
		}
		doc, err := Encode(src.Quotes(), format)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}

		dst := Load(kv.NewMemory(), nil)
		if err := dst.ReplaceAll(nil); err != nil {
			t.Fatalf("ReplaceAll(nil): %v", err)
		}
		res, err := dst.Import(doc, format)
		if err != nil {
			t.Fatalf("Import: %v", err)
		}
		if res.Imported != len(quotes) || res.Dropped != 0 {
			t.Fatalf("Import result = %+v, want %d imported", res, len(quotes))
		}

		again, err := Encode(dst.Quotes(), format)
		if err != nil {
			t.Fatalf("Encode again: %v", err)
		}
		if string(again) != string(doc) {
			t.Fatalf("round trip changed document:\n%s\n---\n%s", doc, again)
		}
	})
}
