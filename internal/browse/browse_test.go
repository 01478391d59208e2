package browse

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/TobiSchelling/faktajouren/internal/database"
	"github.com/TobiSchelling/faktajouren/internal/database/databasetest"
	"github.com/TobiSchelling/faktajouren/internal/tags"
)

type failingSource struct{ err error }

func (f failingSource) Search(context.Context, database.Filter) ([]database.Article, error) {
	return nil, f.err
}

func (f failingSource) SearchColumn(context.Context, database.Filter, database.Column) ([]any, error) {
	return nil, f.err
}

func (f failingSource) ScanColumn(context.Context, database.Column) ([]any, error) {
	return nil, f.err
}

func newBrowser(t *testing.T, articles ...database.Article) *Browser {
	t.Helper()
	return New(databasetest.Open(t, articles...), Settings{
		CloudColumns:  []database.Column{database.Begrepp, database.VeckansOrd},
		CloudMaxWords: 10,
	})
}

func TestSearchBuildsCloudsFromMatches(t *testing.T) {
	b := newBrowser(t, databasetest.Sample()...)

	res, err := b.Search(context.Background(), database.Filter{database.Nummer: "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(res.Articles))
	}
	if len(res.Clouds) != 2 {
		t.Fatalf("expected 2 clouds, got %d", len(res.Clouds))
	}
	if res.Clouds[0].Title != "Begrepp" || res.Clouds[1].Title != "Veckans ord" {
		t.Errorf("unexpected cloud titles %q, %q", res.Clouds[0].Title, res.Clouds[1].Title)
	}

	counts := map[string]int{}
	for _, w := range res.Clouds[0].Words {
		counts[w.Text] = w.Count
	}
	want := map[string]int{"källkritik": 2, "vaccin": 1, "bildmanipulation": 1, "val": 1}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("cloud should only count matching rows (-want +got):\n%s", diff)
	}
}

func TestSearchCloudsIgnoreNonText(t *testing.T) {
	path := databasetest.NewRawFile(t,
		[]any{"1", "vaccin", "a, b", nil, nil, nil, nil},
		[]any{"2", "vaccin", int64(7), nil, nil, nil, nil},
		[]any{"3", "klimat", "c", nil, nil, nil, nil},
	)
	db, err := database.Open(path, database.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b := New(db, Settings{CloudColumns: []database.Column{database.Begrepp}, CloudMaxWords: 10})

	res, err := b.Search(context.Background(), database.Filter{database.Innehall: "vaccin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(res.Articles))
	}
	var words []string
	for _, w := range res.Clouds[0].Words {
		words = append(words, w.Text)
	}
	if diff := cmp.Diff([]string{"a", "b"}, words); diff != "" {
		t.Errorf("cloud words mismatch (-want +got):\n%s", diff)
	}

	// With no filter the cloud and the whole-table tags agree.
	res, err = b.Search(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	freq, err := b.Tags(context.Background(), database.Begrepp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	counts := map[string]int{}
	for _, w := range res.Clouds[0].Words {
		counts[w.Text] = w.Count
	}
	if diff := cmp.Diff(map[string]int(freq), counts); diff != "" {
		t.Errorf("cloud and tags disagree (-tags +cloud):\n%s", diff)
	}
}

func TestTagsEndToEnd(t *testing.T) {
	b := newBrowser(t,
		database.Article{Nummer: "1", Begrepp: "x, y", Innehall: "..."},
		database.Article{Nummer: "2", Begrepp: "y, z", Innehall: "..."},
	)

	got, err := b.Tags(context.Background(), database.Begrepp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(tags.Frequencies{"x": 1, "y": 2, "z": 1}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	again, _ := b.Tags(context.Background(), database.Begrepp)
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("aggregation should be repeatable (-first +second):\n%s", diff)
	}
}

func TestTagsIgnoresNonText(t *testing.T) {
	path := databasetest.NewRawFile(t,
		[]any{"1", nil, "a, b", nil, nil, nil, nil},
		[]any{"2", nil, int64(5), nil, nil, nil, nil},
		[]any{"3", nil, nil, nil, nil, nil, nil},
	)
	db, err := database.Open(path, database.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	got, err := New(db, Settings{}).Tags(context.Background(), database.Begrepp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(tags.Frequencies{"a": 1, "b": 1}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOptions(t *testing.T) {
	b := newBrowser(t, databasetest.Sample()...)

	opts, err := b.Options(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts) != len(database.Filterable) {
		t.Errorf("expected options for %d columns, got %d", len(database.Filterable), len(opts))
	}
	want := []string{"bildmanipulation", "klimat", "källkritik", "vaccin", "val"}
	if diff := cmp.Diff(want, opts[database.Begrepp]); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1", "10", "2"}, opts[database.Nummer]); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestChart(t *testing.T) {
	b := newBrowser(t, databasetest.Sample()...)

	chart, err := b.Chart(context.Background(), database.Begrepp, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chart.Bars) != 1 || chart.Bars[0].Tag != "källkritik" || chart.Bars[0].Count != 3 {
		t.Errorf("unexpected chart %+v", chart)
	}
}

func TestErrorsPropagate(t *testing.T) {
	b := New(failingSource{err: database.ErrStorageUnavailable}, Settings{})

	if _, err := b.Search(context.Background(), nil); !errors.Is(err, database.ErrStorageUnavailable) {
		t.Errorf("Search: expected ErrStorageUnavailable, got %v", err)
	}
	if _, err := b.Options(context.Background()); !errors.Is(err, database.ErrStorageUnavailable) {
		t.Errorf("Options: expected ErrStorageUnavailable, got %v", err)
	}
	if _, err := b.Chart(context.Background(), database.Begrepp, 5); !errors.Is(err, database.ErrStorageUnavailable) {
		t.Errorf("Chart: expected ErrStorageUnavailable, got %v", err)
	}
}

func TestHasLink(t *testing.T) {
	b := newBrowser(t, databasetest.Sample()...)

	ok, err := b.HasLink(context.Background(), "https://example.se/10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected link to be known")
	}
	ok, _ = b.HasLink(context.Background(), "https://evil.example/")
	if ok {
		t.Error("expected unknown link to be rejected")
	}
}
