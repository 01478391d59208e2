package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

var selectColumns = func() string {
	names := make([]string, len(Columns))
	for i, c := range Columns {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}()

// likeEscaper makes LIKE wildcards in a user pattern match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildSearchQuery turns a filter into one parameterized SELECT. Conditions
// follow Filterable order so the generated SQL is stable for a given filter.
func buildSearchQuery(f Filter) (string, []any, error) {
	return buildSelect(selectColumns, f)
}

func buildSelect(list string, f Filter) (string, []any, error) {
	if err := f.Validate(); err != nil {
		return "", nil, err
	}

	query := "SELECT " + list + " FROM " + TableName
	if f.IsEmpty() {
		return query, nil, nil
	}

	var conds []string
	var args []any
	for _, c := range Filterable {
		pattern := f[c]
		if pattern == "" {
			continue
		}
		conds = append(conds, string(c)+` LIKE '%' || ? || '%' ESCAPE '\'`)
		args = append(args, likeEscaper.Replace(pattern))
	}
	return query + " WHERE " + strings.Join(conds, " AND "), args, nil
}

// Search returns every article whose filtered columns contain the given
// patterns. An empty filter returns the whole table in natural row order.
func (db *DB) Search(ctx context.Context, f Filter) ([]Article, error) {
	query, args, err := buildSearchQuery(f)
	if err != nil {
		return nil, err
	}

	var articles []Article
	err = db.withConn(ctx, func(conn *sql.DB) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%w: searching articles: %v", ErrStorageUnavailable, err)
		}
		defer rows.Close()
		articles, err = scanArticles(rows)
		if err != nil {
			return fmt.Errorf("%w: reading articles: %v", ErrStorageUnavailable, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return articles, nil
}

// ScanColumn returns the raw stored value of one column for every row.
// Values keep their SQLite storage class: string, []byte, int64, float64 or nil.
func (db *DB) ScanColumn(ctx context.Context, c Column) ([]any, error) {
	return db.SearchColumn(ctx, nil, c)
}

// SearchColumn returns the raw stored value of column c for every row the
// filter matches, in the same order Search returns those rows.
func (db *DB) SearchColumn(ctx context.Context, f Filter, c Column) ([]any, error) {
	if _, err := ParseColumn(string(c)); err != nil {
		return nil, err
	}
	query, args, err := buildSelect(string(c), f)
	if err != nil {
		return nil, err
	}

	var values []any
	err = db.withConn(ctx, func(conn *sql.DB) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%w: scanning column %s: %v", ErrStorageUnavailable, c, err)
		}
		defer rows.Close()
		for rows.Next() {
			var v any
			if err := rows.Scan(&v); err != nil {
				return fmt.Errorf("%w: scanning column %s: %v", ErrStorageUnavailable, c, err)
			}
			values = append(values, v)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// Count returns the number of rows in the table.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := db.withConn(ctx, func(conn *sql.DB) error {
		if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+TableName).Scan(&n); err != nil {
			return fmt.Errorf("%w: counting rows: %v", ErrStorageUnavailable, err)
		}
		return nil
	})
	return n, err
}

func scanArticles(rows *sql.Rows) ([]Article, error) {
	var articles []Article
	for rows.Next() {
		var nummer, innehall, begrepp, veckansOrd, fria, faktcheck, lank sql.NullString
		if err := rows.Scan(&nummer, &innehall, &begrepp, &veckansOrd, &fria, &faktcheck, &lank); err != nil {
			return nil, err
		}
		articles = append(articles, Article{
			Nummer:           nummer.String,
			Innehall:         innehall.String,
			Begrepp:          begrepp.String,
			VeckansOrd:       veckansOrd.String,
			FriaSokordTermer: fria.String,
			Faktcheck:        faktcheck.String,
			Lank:             lank.String,
		})
	}
	return articles, rows.Err()
}
