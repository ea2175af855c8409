package quotes

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/five82/quotebook/internal/kv"
)

// flakyStore fails writes while failWrites is set.
type flakyStore struct {
	kv.Memory
	failWrites bool
}

func (f *flakyStore) Set(key, value string) error {
	if f.failWrites {
		return errors.New("disk full")
	}
	return f.Memory.Set(key, value)
}

func newTestRepo(t *testing.T, seed []Quote) (*Repository, *kv.Memory) {
	t.Helper()
	store := kv.NewMemory()
	if seed != nil {
		payload, err := json.Marshal(seed)
		require.NoError(t, err)
		require.NoError(t, store.Set(KeyQuotes, string(payload)))
	}
	return Load(store, zap.NewNop()), store
}

func storedQuotes(t *testing.T, store kv.Store) []Quote {
	t.Helper()
	raw, ok, err := store.Get(KeyQuotes)
	require.NoError(t, err)
	require.True(t, ok, "quotes key should be persisted")
	var out []Quote
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestLoad_FallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name   string
		stored *string
	}{
		{name: "absent"},
		{name: "empty string", stored: ptr("")},
		{name: "corrupt json", stored: ptr("{not json")},
		{name: "not a sequence", stored: ptr(`{"text":"a","category":"b"}`)},
		{name: "no valid records", stored: ptr(`[{"text":"  ","category":"x"},{"text":"y"},42]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := kv.NewMemory()
			if tt.stored != nil {
				require.NoError(t, store.Set(KeyQuotes, *tt.stored))
			}

			repo := Load(store, zap.NewNop())

			if diff := cmp.Diff(Default, repo.Quotes()); diff != "" {
				t.Fatalf("Quotes() mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(Default, storedQuotes(t, store)); diff != "" {
				t.Fatalf("defaults not persisted (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_DropsInvalidRecordsWithoutRepairing(t *testing.T) {
	store := kv.NewMemory()
	require.NoError(t, store.Set(KeyQuotes, `[
		{"text":"  Keep going  ","category":" Persistence "},
		{"text":"","category":"Empty"},
		{"text":"No category"},
		{"text":7,"category":"Numbers"},
		"just a string"
	]`))

	repo := Load(store, zap.NewNop())

	assert.Equal(t, []Quote{{Text: "Keep going", Category: "Persistence"}}, repo.Quotes())
	assert.Equal(t, []string{AllCategories, "Persistence"}, repo.Categories())
}

func TestAdd_PersistsAndIndexes(t *testing.T) {
	repo, store := newTestRepo(t, []Quote{{Text: "a", Category: "Life"}})

	q, err := repo.Add("  Stay hungry  ", "\tWork ")
	require.NoError(t, err)
	assert.Equal(t, Quote{Text: "Stay hungry", Category: "Work"}, q)

	reloaded := Load(store, zap.NewNop())
	assert.Contains(t, reloaded.Quotes(), q)
	assert.Contains(t, reloaded.Categories(), "Work")
	assert.Equal(t, []string{AllCategories, "Life", "Work"}, repo.Categories())
}

func TestAdd_RejectsEmptyFields(t *testing.T) {
	repo, _ := newTestRepo(t, []Quote{{Text: "a", Category: "b"}})

	for _, in := range [][2]string{{"", "x"}, {"x", ""}, {"   ", "x"}, {"x", "\n"}} {
		_, err := repo.Add(in[0], in[1])
		require.ErrorIs(t, err, ErrValidation, "Add(%q, %q)", in[0], in[1])
	}
	assert.Equal(t, 1, repo.Len())
}

func TestAdd_RejectsInvalidUTF8(t *testing.T) {
	repo, store := newTestRepo(t, []Quote{{Text: "a", Category: "b"}})

	for _, in := range [][2]string{{"bad\xffbyte", "X"}, {"fine", "X\xc3"}} {
		_, err := repo.Add(in[0], in[1])
		require.ErrorIs(t, err, ErrValidation, "Add(%q, %q)", in[0], in[1])
	}

	q, err := repo.Add("caf\u00e9 \U0001F600", "Unicode")
	require.NoError(t, err)
	reloaded := Load(store, zap.NewNop())
	if diff := cmp.Diff([]Quote{{Text: "a", Category: "b"}, q}, reloaded.Quotes()); diff != "" {
		t.Fatalf("reloaded quotes mismatch (-want +got):\n%s", diff)
	}
}

func TestReplaceAll_DropsInvalidUTF8(t *testing.T) {
	repo, store := newTestRepo(t, nil)

	require.NoError(t, repo.ReplaceAll([]Quote{
		{Text: "ok", Category: "Life"},
		{Text: "bad\xff", Category: "Life"},
	}))
	assert.Equal(t, []Quote{{Text: "ok", Category: "Life"}}, storedQuotes(t, store))
}

func TestAdd_DurableFailureSurfacesAndLeavesStateUnchanged(t *testing.T) {
	store := &flakyStore{}
	repo := Load(store, zap.NewNop())
	before := repo.Quotes()

	store.failWrites = true
	_, err := repo.Add("new", "Fresh")

	require.ErrorIs(t, err, ErrPersistenceWrite)
	assert.Equal(t, before, repo.Quotes())
	assert.NotContains(t, repo.Categories(), "Fresh")
}

func TestReplaceAll_ValidatesLikeLoad(t *testing.T) {
	repo, store := newTestRepo(t, nil)

	err := repo.ReplaceAll([]Quote{
		{Text: " one ", Category: "A"},
		{Text: "", Category: "B"},
		{Text: "two", Category: " "},
		{Text: "three", Category: "a"},
	})
	require.NoError(t, err)

	want := []Quote{{Text: "one", Category: "A"}, {Text: "three", Category: "a"}}
	assert.Equal(t, want, repo.Quotes())
	assert.Equal(t, want, storedQuotes(t, store))
	assert.Equal(t, []string{AllCategories, "A", "a"}, repo.Categories())
}

func TestMerge_SeesCurrentState(t *testing.T) {
	repo, _ := newTestRepo(t, []Quote{{Text: "a", Category: "x"}})
	_, err := repo.Add("b", "y")
	require.NoError(t, err)

	var seen []Quote
	err = repo.Merge(func(current []Quote) []Quote {
		seen = current
		return append([]Quote{{Text: "r", Category: "Server"}}, current...)
	})
	require.NoError(t, err)

	assert.Len(t, seen, 2)
	assert.Equal(t, []string{AllCategories, "Server", "x", "y"}, repo.Categories())
}

func TestCategories_FirstSeenOrderCaseSensitive(t *testing.T) {
	got := Categories([]Quote{
		{Text: "1", Category: "Life"},
		{Text: "2", Category: "life"},
		{Text: "3", Category: "Motivation"},
		{Text: "4", Category: " Life "},
	})
	want := []string{AllCategories, "Life", "life", "Motivation"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Categories mismatch (-want +got):\n%s", diff)
	}
}

func ptr(s string) *string { return &s }
