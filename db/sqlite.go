package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"accidentprep/frame"
)

var database *sql.DB

// InitDB opens (creating if needed) the SQLite database.
func InitDB(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	var err error
	database, err = sql.Open("sqlite3", path)
	return err
}

// Close releases the database handle.
func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// SaveTable persists a frame.Table under the given name, replacing any
// previous contents. The DDL is derived from the table schema and all
// rows are inserted in one transaction.
func SaveTable(name string, t *frame.Table) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	if t.NumCols() == 0 {
		return errors.New("table has no columns")
	}

	names := t.ColumnNames()
	defs := make([]string, len(names))
	quoted := make([]string, len(names))
	holders := make([]string, len(names))
	for i, col := range names {
		c, _ := t.Column(col)
		defs[i] = fmt.Sprintf("%s %s", quoteIdent(col), sqliteType(c.Kind))
		quoted[i] = quoteIdent(col)
		holders[i] = "?"
	}

	if _, err := database.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(name))); err != nil {
		return err
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
	if _, err := database.Exec(ddl); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}

	tx, err := database.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(name), strings.Join(quoted, ", "), strings.Join(holders, ", ")))
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	args := make([]interface{}, t.NumCols())
	for i := 0; i < t.NumRows(); i++ {
		for j, col := range names {
			c, _ := t.Column(col)
			args[j] = cellValue(c, i)
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert into %s row %d: %w", name, i, err)
		}
	}
	return tx.Commit()
}

// RowCount returns the number of rows stored under name.
func RowCount(name string) (int, error) {
	if database == nil {
		return 0, errors.New("database not initialized")
	}
	var count int
	err := database.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(name))).Scan(&count)
	return count, err
}

func sqliteType(k frame.Kind) string {
	switch k {
	case frame.Float:
		return "REAL"
	case frame.Int, frame.Bool:
		return "INTEGER"
	case frame.Time:
		return "DATETIME"
	default:
		return "TEXT"
	}
}

func cellValue(c *frame.Column, i int) interface{} {
	if c.IsNull(i) {
		return nil
	}
	switch c.Kind {
	case frame.Float:
		return c.Floats[i]
	case frame.Int:
		return c.Ints[i]
	case frame.Bool:
		return c.Bools[i]
	case frame.Time:
		return c.Times[i]
	default:
		return c.Strings[i]
	}
}

// quoteIdent double-quotes an identifier; dataset columns carry
// characters like ( and %.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
