// Package tags splits comma-separated column values into tags and counts
// how often each tag occurs. Everything here is pure and deterministic.
package tags

import (
	"sort"
	"strings"
)

// Split breaks a comma-separated value into trimmed, non-empty tags.
func Split(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// FromRaw converts raw stored values into text. Strings and byte slices are
// kept, nil contributes nothing, and any other type is malformed: it adds
// no tags and is only counted.
func FromRaw(values []any) (texts []string, malformed int) {
	for _, v := range values {
		switch x := v.(type) {
		case string:
			texts = append(texts, x)
		case []byte:
			texts = append(texts, string(x))
		case nil:
		default:
			malformed++
		}
	}
	return texts, malformed
}

// Frequencies maps a tag to the number of times it occurs. Every key
// present has a count of at least one.
type Frequencies map[string]int

// Entry is one tag with its count.
type Entry struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Count tallies the tags of every value.
func Count(values []string) Frequencies {
	freq := make(Frequencies)
	for _, v := range values {
		for _, tag := range Split(v) {
			freq[tag]++
		}
	}
	return freq
}

// Distinct returns the set of tags across values, sorted alphabetically.
func Distinct(values []string) []string {
	return Count(values).Tags()
}

// Tags returns the distinct tags, sorted alphabetically.
func (f Frequencies) Tags() []string {
	out := make([]string, 0, len(f))
	for tag := range f {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Total returns the number of tag occurrences counted.
func (f Frequencies) Total() int {
	var n int
	for _, c := range f {
		n += c
	}
	return n
}

// Entries returns every tag with its count, sorted alphabetically by tag.
func (f Frequencies) Entries() []Entry {
	entries := make([]Entry, 0, len(f))
	for _, tag := range f.Tags() {
		entries = append(entries, Entry{Tag: tag, Count: f[tag]})
	}
	return entries
}

// Top returns the n most frequent entries, ties broken alphabetically.
// n <= 0 returns every entry.
func (f Frequencies) Top(n int) []Entry {
	entries := f.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}
