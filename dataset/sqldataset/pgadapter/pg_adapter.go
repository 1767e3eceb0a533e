/*
Package pgadapter provides an implementation of the
Adapter interface in the sqldataset package that works
over a PostgreSQL database.
*/
package pgadapter

import (
	"database/sql"
	"fmt"

	"github.com/hafniz/mlcore/dataset/sqldataset"
	"github.com/hafniz/mlcore/feature"

	// Import of PostgreSQL driver
	_ "github.com/lib/pq"
)

type adapter struct {
	db *sql.DB
}

/*
New takes a PostgreSQL database connection URL and returns
an Adapter that works on the database or an error if it fails to connect to it.
*/
func New(url string) (sqldataset.Adapter, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	return &adapter{db}, nil
}

func (a *adapter) DB() *sql.DB {
	return a.db
}

func (a *adapter) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func (a *adapter) ColumnType(f feature.Feature) (string, error) {
	switch feature.KindOf(f) {
	case feature.Discrete:
		return "TEXT", nil
	case feature.Continuous:
		return "DOUBLE PRECISION", nil
	}
	return "", &feature.KindError{Feature: f.Name(), Expected: feature.Discrete, Got: feature.Unknown}
}

func (a *adapter) IDColumnDefinition() string {
	return `"id" SERIAL PRIMARY KEY`
}
