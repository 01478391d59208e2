package database

import (
	"errors"
	"fmt"
	"strings"
)

// TableName is the single table this application reads.
const TableName = "faktajouren"

// Column names one of the seven text columns of the faktajouren table.
// The schema's spelling is authoritative; UI labels come from Label.
type Column string

const (
	Nummer           Column = "Nummer"
	Innehall         Column = "Innehall"
	Begrepp          Column = "Begrepp"
	VeckansOrd       Column = "Veckans_ord"
	FriaSokordTermer Column = "Fria_sokord_termer"
	Faktcheck        Column = "Faktcheck"
	Lank             Column = "Lank"
)

// ErrUnknownColumn is returned for column names outside the schema or for
// columns that cannot be filtered on.
var ErrUnknownColumn = errors.New("unknown column")

// Columns lists every column in schema order.
var Columns = []Column{Nummer, Innehall, Begrepp, VeckansOrd, FriaSokordTermer, Faktcheck, Lank}

// Filterable lists the columns a Filter may constrain, in query order.
var Filterable = []Column{Nummer, Innehall, Begrepp, VeckansOrd, FriaSokordTermer}

var labels = map[Column]string{
	Nummer:           "Nummer",
	Innehall:         "Innehåll",
	Begrepp:          "Begrepp",
	VeckansOrd:       "Veckans ord",
	FriaSokordTermer: "Fria sökord / termer",
	Faktcheck:        "Faktcheck",
	Lank:             "Länk",
}

// Label returns the human-readable label for a column.
func (c Column) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

// Param returns the lowercase name used for query-string and form parameters.
func (c Column) Param() string {
	return strings.ToLower(string(c))
}

// IsFilterable reports whether c may appear in a Filter.
func (c Column) IsFilterable() bool {
	for _, f := range Filterable {
		if f == c {
			return true
		}
	}
	return false
}

// ParseColumn resolves a schema column name, ignoring case.
func ParseColumn(name string) (Column, error) {
	for _, c := range Columns {
		if strings.EqualFold(string(c), name) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// Filter maps filterable columns to substring patterns. Missing and empty
// patterns match every row.
type Filter map[Column]string

// Validate checks that every key is a filterable column.
func (f Filter) Validate() error {
	for c := range f {
		if !c.IsFilterable() {
			return fmt.Errorf("%w: %q is not filterable", ErrUnknownColumn, c)
		}
	}
	return nil
}

// IsEmpty reports whether no pattern constrains the result.
func (f Filter) IsEmpty() bool {
	for _, p := range f {
		if p != "" {
			return false
		}
	}
	return true
}

// Article is one row of the faktajouren table. NULL values read as "".
type Article struct {
	Nummer           string `json:"nummer"`
	Innehall         string `json:"innehall"`
	Begrepp          string `json:"begrepp"`
	VeckansOrd       string `json:"veckans_ord"`
	FriaSokordTermer string `json:"fria_sokord_termer"`
	Faktcheck        string `json:"faktcheck"`
	Lank             string `json:"lank"`
}

// Value returns the article's value for a column.
func (a Article) Value(c Column) string {
	switch c {
	case Nummer:
		return a.Nummer
	case Innehall:
		return a.Innehall
	case Begrepp:
		return a.Begrepp
	case VeckansOrd:
		return a.VeckansOrd
	case FriaSokordTermer:
		return a.FriaSokordTermer
	case Faktcheck:
		return a.Faktcheck
	case Lank:
		return a.Lank
	}
	return ""
}
