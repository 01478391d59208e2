package visual

import (
	"hash/fnv"
	"sort"

	"github.com/TobiSchelling/faktajouren/internal/tags"
)

const (
	// MinFontSize and MaxFontSize bound word sizes in pixels.
	MinFontSize = 12.0
	MaxFontSize = 48.0

	// DefaultCloudWords caps a cloud when no maximum is given.
	DefaultCloudWords = 60
)

var palette = []string{
	"#1f4e79", "#2e75b6", "#c55a11", "#548235",
	"#7030a0", "#bf9000", "#a50021", "#2f5597",
}

// Word is one sized, coloured tag in a cloud.
type Word struct {
	Text  string  `json:"text"`
	Count int     `json:"count"`
	Size  float64 `json:"size"`
	Color string  `json:"color"`
}

// WordCloud is a titled set of words in alphabetical order.
type WordCloud struct {
	Title string `json:"title"`
	Words []Word `json:"words"`
}

// Empty reports whether the cloud has nothing to show.
func (c WordCloud) Empty() bool {
	return len(c.Words) == 0
}

// Cloud keeps the maxWords most frequent tags and scales their font size
// linearly by count.
func Cloud(title string, freq tags.Frequencies, maxWords int) WordCloud {
	if maxWords <= 0 {
		maxWords = DefaultCloudWords
	}
	entries := freq.Top(maxWords)
	cloud := WordCloud{Title: title, Words: make([]Word, 0, len(entries))}
	if len(entries) == 0 {
		return cloud
	}

	hi := entries[0].Count
	lo := entries[len(entries)-1].Count
	for _, e := range entries {
		cloud.Words = append(cloud.Words, Word{
			Text:  e.Tag,
			Count: e.Count,
			Size:  fontSize(e.Count, lo, hi),
			Color: colorFor(e.Tag),
		})
	}
	sort.Slice(cloud.Words, func(i, j int) bool {
		return cloud.Words[i].Text < cloud.Words[j].Text
	})
	return cloud
}

func fontSize(count, lo, hi int) float64 {
	if hi == lo {
		return MaxFontSize
	}
	scale := float64(count-lo) / float64(hi-lo)
	return round1(MinFontSize + scale*(MaxFontSize-MinFontSize))
}

func colorFor(tag string) string {
	h := fnv.New32a()
	h.Write([]byte(tag))
	return palette[h.Sum32()%uint32(len(palette))]
}
