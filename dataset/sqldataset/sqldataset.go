package sqldataset

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/feature"
)

/*
MaxSampleInsertionsPerStatement is the maximum number
of samples that are inserted with a single insert command
by Store. Storing more will result in making more insertion
commands.
*/
const MaxSampleInsertionsPerStatement = 10

/*
Store takes a context, an Adapter, a table name, the features to store and
a dataset and inserts the samples of the dataset into the table, creating
it if it does not exist. It returns the number of samples inserted and an
error if not all of them could be.
*/
func Store(ctx context.Context, a Adapter, table string, features []feature.Feature, ds dataset.Dataset) (int, error) {
	tableID, err := Identifier(table)
	if err != nil {
		return 0, err
	}
	columns := make([]string, len(features))
	var createStmt bytes.Buffer
	fmt.Fprintf(&createStmt, "CREATE TABLE IF NOT EXISTS %s (%s", tableID, a.IDColumnDefinition())
	for i, f := range features {
		columns[i], err = Identifier(f.Name())
		if err != nil {
			return 0, err
		}
		ct, err := a.ColumnType(f)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(&createStmt, ", %s %s NULL", columns[i], ct)
	}
	createStmt.WriteString(")")
	if _, err = a.DB().ExecContext(ctx, createStmt.String()); err != nil {
		return 0, fmt.Errorf("creating table %s: %w", table, err)
	}

	samples := ds.Samples()
	for start := 0; start < len(samples); start += MaxSampleInsertionsPerStatement {
		end := start + MaxSampleInsertionsPerStatement
		if end > len(samples) {
			end = len(samples)
		}
		stmt, args, err := insertStatement(a, tableID, columns, features, samples[start:end])
		if err != nil {
			return start, err
		}
		if _, err = a.DB().ExecContext(ctx, stmt, args...); err != nil {
			return start, fmt.Errorf("inserting samples %d to %d: %w", start, end-1, err)
		}
	}
	return len(samples), nil
}

func insertStatement(a Adapter, tableID string, columns []string, features []feature.Feature, samples []dataset.Sample) (string, []interface{}, error) {
	var stmt bytes.Buffer
	fmt.Fprintf(&stmt, "INSERT INTO %s (%s) VALUES ", tableID, strings.Join(columns, ", "))
	args := make([]interface{}, 0, len(samples)*len(features))
	for i, s := range samples {
		if i > 0 {
			stmt.WriteString(", ")
		}
		stmt.WriteString("(")
		for j, f := range features {
			if j > 0 {
				stmt.WriteString(", ")
			}
			v, err := s.ValueFor(f)
			if err != nil {
				return "", nil, err
			}
			if ok, err := f.Valid(v); !ok {
				return "", nil, fmt.Errorf("storing value %v for feature %s: %w", v, f.Name(), err)
			}
			args = append(args, v)
			stmt.WriteString(a.Placeholder(len(args)))
		}
		stmt.WriteString(")")
	}
	return stmt.String(), args, nil
}

/*
Load takes a context, an Adapter, a table name and features and returns a
dataset with a sample per row of the table, in insertion order, with the
values on the columns named after the features. NULL values are undefined.
*/
func Load(ctx context.Context, a Adapter, table string, features []feature.Feature) (dataset.Dataset, error) {
	tableID, err := Identifier(table)
	if err != nil {
		return nil, err
	}
	columns := make([]string, len(features))
	for i, f := range features {
		columns[i], err = Identifier(f.Name())
		if err != nil {
			return nil, err
		}
		if feature.KindOf(f) == feature.Unknown {
			return nil, &feature.KindError{Feature: f.Name(), Expected: feature.Discrete, Got: feature.Unknown}
		}
	}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY "id"`, strings.Join(columns, ", "), tableID)
	rows, err := a.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying table %s: %w", table, err)
	}
	defer rows.Close()

	var samples []dataset.Sample
	for rows.Next() {
		dest := make([]interface{}, len(features))
		for i, f := range features {
			if feature.KindOf(f) == feature.Continuous {
				dest[i] = &sql.NullFloat64{}
			} else {
				dest[i] = &sql.NullString{}
			}
		}
		if err = rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("reading row %d of table %s: %w", len(samples), table, err)
		}
		values := make(map[string]interface{}, len(features))
		for i, f := range features {
			switch d := dest[i].(type) {
			case *sql.NullFloat64:
				if d.Valid {
					values[f.Name()] = d.Float64
				}
			case *sql.NullString:
				if d.Valid {
					values[f.Name()] = d.String
				}
			}
			if ok, err := f.Valid(values[f.Name()]); !ok {
				return nil, fmt.Errorf("invalid value %v for feature %s on row %d: %w", values[f.Name()], f.Name(), len(samples), err)
			}
		}
		samples = append(samples, dataset.NewSample(values))
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("reading table %s: %w", table, err)
	}
	return dataset.New(samples), nil
}
