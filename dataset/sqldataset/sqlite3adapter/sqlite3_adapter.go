/*
Package sqlite3adapter provides an implementation of the
Adapter interface in the sqldataset package that works
over an SQLite3 database file.
*/
package sqlite3adapter

import (
	"database/sql"

	"github.com/hafniz/mlcore/dataset/sqldataset"
	"github.com/hafniz/mlcore/feature"

	// Import of sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

type adapter struct {
	db *sql.DB
}

/*
New takes a path to an SQLite3 database file and returns an Adapter that works
on the file's database or an error if it fails to open as an sqlite3 database.
*/
func New(path string) (sqldataset.Adapter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite3 serializes writes, a single connection avoids busy errors
	db.SetMaxOpenConns(1)
	return &adapter{db}, nil
}

func (a *adapter) DB() *sql.DB {
	return a.db
}

func (a *adapter) Placeholder(int) string {
	return "?"
}

func (a *adapter) ColumnType(f feature.Feature) (string, error) {
	switch feature.KindOf(f) {
	case feature.Discrete:
		return "TEXT", nil
	case feature.Continuous:
		return "REAL", nil
	}
	return "", &feature.KindError{Feature: f.Name(), Expected: feature.Discrete, Got: feature.Unknown}
}

func (a *adapter) IDColumnDefinition() string {
	return `"id" INTEGER PRIMARY KEY AUTOINCREMENT`
}
