/*
Package sqldataset loads datasets from SQL database tables and stores them
in them.

A dataset is kept in a single table with a column per feature, named after
the feature, plus an "id" column that keeps the order of the samples.
Discrete values are stored as text and continuous values as floating point
numbers, NULL standing for undefined values.

Package sqlite3adapter and package pgadapter provide the Adapters for
SQLite3 and PostgreSQL databases.
*/
package sqldataset
