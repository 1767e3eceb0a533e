package sqldataset

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/hafniz/mlcore/feature"
)

/*
Adapter is an interface providing the database specifics
needed to load and store datasets on a database.
*/
type Adapter interface {
	// DB returns the database handle to run statements on
	DB() *sql.DB
	// Placeholder returns the placeholder for the n-th
	// argument of a statement, starting at 1
	Placeholder(n int) string
	// ColumnType returns the type of the column holding
	// the values of the given feature
	ColumnType(feature.Feature) (string, error)
	// IDColumnDefinition returns the definition of the
	// auto-incremented primary key column "id"
	IDColumnDefinition() string
}

/*
Identifier takes a table or feature name and returns it quoted to be used
as an SQL identifier, or an error if it cannot be used as one.
*/
func Identifier(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty name cannot be used as identifier")
	}
	if name == "id" {
		return "", fmt.Errorf(`'%s' is reserved and cannot be used as feature name`, name)
	}
	if strings.ContainsAny(name, `"`) {
		return "", fmt.Errorf(`name '%s' contains invalid character '"'`, name)
	}
	return fmt.Sprintf(`"%s"`, name), nil
}
