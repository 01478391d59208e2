// Package browse ties the query layer and the tag aggregator together into
// the operations one page view needs.
package browse

import (
	"context"
	"log"
	"strings"

	"github.com/TobiSchelling/faktajouren/internal/database"
	"github.com/TobiSchelling/faktajouren/internal/tags"
	"github.com/TobiSchelling/faktajouren/internal/visual"
)

// Source is the read-only store the browser works against.
type Source interface {
	Search(ctx context.Context, f database.Filter) ([]database.Article, error)
	SearchColumn(ctx context.Context, f database.Filter, c database.Column) ([]any, error)
	ScanColumn(ctx context.Context, c database.Column) ([]any, error)
}

// Settings control which visualizations are built.
type Settings struct {
	CloudColumns  []database.Column
	CloudMaxWords int
}

// Results is one search: the matching rows and the word clouds built over them.
type Results struct {
	Filter   database.Filter
	Articles []database.Article
	Clouds   []visual.WordCloud
}

// Browser answers searches and aggregation requests. It keeps no state
// between calls.
type Browser struct {
	src      Source
	settings Settings
}

// New creates a browser over src.
func New(src Source, settings Settings) *Browser {
	return &Browser{src: src, settings: settings}
}

// Search runs the filter and builds word clouds from the matching rows.
// Cloud columns are read raw, so non-text values add no words.
func (b *Browser) Search(ctx context.Context, f database.Filter) (*Results, error) {
	articles, err := b.src.Search(ctx, f)
	if err != nil {
		return nil, err
	}

	res := &Results{Filter: f, Articles: articles}
	for _, c := range b.settings.CloudColumns {
		raw, err := b.src.SearchColumn(ctx, f, c)
		if err != nil {
			return nil, err
		}
		freq := tags.Count(texts(c, raw))
		res.Clouds = append(res.Clouds, visual.Cloud(c.Label(), freq, b.settings.CloudMaxWords))
	}
	return res, nil
}

// Tags returns the tag frequencies of one column over the whole table.
func (b *Browser) Tags(ctx context.Context, c database.Column) (tags.Frequencies, error) {
	raw, err := b.src.ScanColumn(ctx, c)
	if err != nil {
		return nil, err
	}
	return tags.Count(texts(c, raw)), nil
}

// Options returns the distinct tags of every filterable column, used as
// suggestions next to the filter inputs.
func (b *Browser) Options(ctx context.Context) (map[database.Column][]string, error) {
	opts := make(map[database.Column][]string, len(database.Filterable))
	for _, c := range database.Filterable {
		raw, err := b.src.ScanColumn(ctx, c)
		if err != nil {
			return nil, err
		}
		opts[c] = tags.Distinct(texts(c, raw))
	}
	return opts, nil
}

func texts(c database.Column, raw []any) []string {
	out, malformed := tags.FromRaw(raw)
	if malformed > 0 {
		log.Printf("Column %s: ignored %d non-text values", c, malformed)
	}
	return out
}

// Chart builds the bar chart of the most frequent tags in a column.
func (b *Browser) Chart(ctx context.Context, c database.Column, limit int) (visual.Chart, error) {
	freq, err := b.Tags(ctx, c)
	if err != nil {
		return visual.Chart{}, err
	}
	return visual.BarChart(c.Label(), freq, limit), nil
}

// HasLink reports whether link is the Lank of some article. Only such links
// are fetched for previews.
func (b *Browser) HasLink(ctx context.Context, link string) (bool, error) {
	raw, err := b.src.ScanColumn(ctx, database.Lank)
	if err != nil {
		return false, err
	}
	texts, _ := tags.FromRaw(raw)
	for _, t := range texts {
		if strings.TrimSpace(t) == link {
			return true, nil
		}
	}
	return false, nil
}
