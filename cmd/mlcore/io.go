package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hafniz/mlcore"
	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/dataset/csv"
	"github.com/hafniz/mlcore/dataset/mongodataset"
	"github.com/hafniz/mlcore/dataset/sqldataset"
	"github.com/hafniz/mlcore/dataset/sqldataset/pgadapter"
	"github.com/hafniz/mlcore/dataset/sqldataset/sqlite3adapter"
	"github.com/hafniz/mlcore/feature"
	"github.com/hafniz/mlcore/feature/yaml"
	"github.com/hafniz/mlcore/tree"
	mgo "gopkg.in/mgo.v2"
)

const dataLocationHelp = "a CSV file, an SQLite3 (.db) file, a PostgreSQL URL (postgresql://) or a MongoDB URL (mongodb://)"

type storage int

const (
	csvStorage storage = iota
	sqlite3Storage
	postgresStorage
	mongoStorage
)

func storageOf(location string) storage {
	switch {
	case strings.HasPrefix(location, "postgresql://"), strings.HasPrefix(location, "postgres://"):
		return postgresStorage
	case strings.HasPrefix(location, "mongodb://"):
		return mongoStorage
	case strings.HasSuffix(location, ".db"):
		return sqlite3Storage
	}
	return csvStorage
}

// readMetadata reads the features at path and splits out the label
func (rc *rootCmdConfig) readMetadata(path, label string) ([]feature.Feature, *feature.DiscreteFeature, error) {
	rc.Logf("Reading features from metadata at %s...", path)
	features, err := yaml.ReadFeaturesFromFile(path)
	if err != nil {
		return nil, nil, err
	}
	return yaml.Split(features, label)
}

/*
readDataset reads a dataset with the given features from location, which
is dispatched on its form: PostgreSQL and MongoDB URLs and SQLite3 files
are read from the given table or collection, anything else is read as a
CSV file, standard input if empty.
*/
func (rc *rootCmdConfig) readDataset(ctx context.Context, location, table string, features []feature.Feature) (dataset.Dataset, error) {
	switch storageOf(location) {
	case postgresStorage:
		rc.Logf("Reading table %s of PostgreSQL database...", table)
		a, err := pgadapter.New(location)
		if err != nil {
			return nil, err
		}
		defer a.DB().Close()
		return sqldataset.Load(ctx, a, table, features)
	case sqlite3Storage:
		rc.Logf("Reading table %s of SQLite3 database %s...", table, location)
		a, err := sqlite3adapter.New(location)
		if err != nil {
			return nil, err
		}
		defer a.DB().Close()
		return sqldataset.Load(ctx, a, table, features)
	case mongoStorage:
		rc.Logf("Reading collection %s of MongoDB database...", table)
		session, err := mgo.Dial(location)
		if err != nil {
			return nil, fmt.Errorf("connecting to MongoDB: %w", err)
		}
		defer session.Close()
		return mongodataset.Load(ctx, session, table, features)
	}
	if location == "" {
		rc.Logf("Reading CSV dataset from STDIN...")
	} else {
		rc.Logf("Reading CSV dataset from %s...", location)
	}
	return csv.ReadDatasetFromFilePath(location, features)
}

// writeDataset writes ds to location, dispatched like in readDataset.
// CSV datasets are written to standard output if location is empty.
func (rc *rootCmdConfig) writeDataset(ctx context.Context, location, table string, features []feature.Feature, ds dataset.Dataset) (err error) {
	switch storageOf(location) {
	case postgresStorage:
		rc.Logf("Writing table %s of PostgreSQL database...", table)
		a, err := pgadapter.New(location)
		if err != nil {
			return err
		}
		defer a.DB().Close()
		_, err = sqldataset.Store(ctx, a, table, features, ds)
		return err
	case sqlite3Storage:
		rc.Logf("Writing table %s of SQLite3 database %s...", table, location)
		a, err := sqlite3adapter.New(location)
		if err != nil {
			return err
		}
		defer a.DB().Close()
		_, err = sqldataset.Store(ctx, a, table, features, ds)
		return err
	case mongoStorage:
		rc.Logf("Writing collection %s of MongoDB database...", table)
		session, err := mgo.Dial(location)
		if err != nil {
			return fmt.Errorf("connecting to MongoDB: %w", err)
		}
		defer session.Close()
		_, err = mongodataset.Store(ctx, session, table, features, ds)
		return err
	}
	out := os.Stdout
	if location != "" {
		rc.Logf("Writing CSV dataset to %s...", location)
		out, err = os.Create(location)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := out.Close(); err == nil {
				err = cerr
			}
		}()
	}
	return csv.WriteDataset(out, ds, features)
}

/*
growTree reads the training set at location, dispatched like in
readDataset, and grows a tree on it to predict label. With fallback, the
tree predicts the distribution of the node for values never seen while
growing instead of failing.
*/
func (rc *rootCmdConfig) growTree(ctx context.Context, location, table string, features []feature.Feature, label feature.Feature, fallback bool) (*tree.Tree, error) {
	trainingSet, err := rc.readDataset(ctx, location, table, withLabel(features, label))
	if err != nil {
		return nil, fmt.Errorf("reading training set: %w", err)
	}
	var opts []tree.Option
	if fallback {
		opts = append(opts, tree.WithUnseenValueFallback())
	}
	rc.Logf("Growing tree from a set with %d samples and %d features to predict %s ...", trainingSet.Count(), len(features), label.Name())
	t, err := mlcore.Grow(ctx, trainingSet, features, label, opts...)
	if err != nil {
		return nil, fmt.Errorf("growing the tree: %w", err)
	}
	rc.Logf("Done, tree has %d nodes", t.Len())
	return t, nil
}

// withLabel returns the features followed by the label
func withLabel(features []feature.Feature, label feature.Feature) []feature.Feature {
	return append(append([]feature.Feature{}, features...), label)
}
