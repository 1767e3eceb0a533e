/*
Package mongodataset stores and loads datasets on MongoDB
collections, a document per sample with a field per defined
feature value.
*/
package mongodataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/feature"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

/*
Store takes a context, a MongoDB session, a collection name on the
default database of the session, the features to store and a dataset
and inserts a document per sample of the dataset into the collection.
Undefined values are left out of the documents. It returns the number
of samples inserted.
*/
func Store(ctx context.Context, session *mgo.Session, collection string, features []feature.Feature, ds dataset.Dataset) (int, error) {
	c := session.DB("").C(collection)
	if err := ensureIndexes(c, features); err != nil {
		return 0, err
	}
	docs := make([]interface{}, 0, ds.Count())
	for _, s := range ds.Samples() {
		doc := make(bson.M)
		for _, f := range features {
			value, err := s.ValueFor(f)
			if err != nil {
				return 0, err
			}
			if ok, err := f.Valid(value); !ok {
				return 0, fmt.Errorf("storing value %v for feature %s: %w", value, f.Name(), err)
			}
			if value != nil {
				doc[f.Name()] = value
			}
		}
		docs = append(docs, doc)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}
	if err := c.Insert(docs...); err != nil {
		return 0, err
	}
	return len(docs), nil
}

/*
Load takes a context, a MongoDB session, a collection name on the
default database of the session and features and returns a dataset
with a sample per document of the collection, in insertion order.
*/
func Load(ctx context.Context, session *mgo.Session, collection string, features []feature.Feature) (dataset.Dataset, error) {
	if err := validNames(features); err != nil {
		return nil, err
	}
	iter := session.DB("").C(collection).Find(nil).Sort("_id").Iter()
	var samples []dataset.Sample
	var doc bson.M
	for iter.Next(&doc) {
		if err := ctx.Err(); err != nil {
			iter.Close()
			return nil, err
		}
		s, err := sampleFromDocument(doc, features)
		if err != nil {
			iter.Close()
			return nil, fmt.Errorf("document %d: %w", len(samples), err)
		}
		samples = append(samples, s)
		doc = nil
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return dataset.New(samples), nil
}

func sampleFromDocument(doc bson.M, features []feature.Feature) (dataset.Sample, error) {
	values := make(map[string]interface{}, len(features))
	for _, f := range features {
		v, ok := doc[f.Name()]
		if !ok || v == nil {
			continue
		}
		if feature.KindOf(f) == feature.Continuous {
			switch n := v.(type) {
			case int:
				v = float64(n)
			case int64:
				v = float64(n)
			}
		}
		if ok, err := f.Valid(v); !ok {
			return nil, err
		}
		values[f.Name()] = v
	}
	return dataset.NewSample(values), nil
}

func ensureIndexes(c *mgo.Collection, features []feature.Feature) error {
	if err := validNames(features); err != nil {
		return err
	}
	for _, f := range features {
		index := mgo.Index{
			Key:        []string{f.Name()},
			Background: true,
			Sparse:     true,
		}
		if err := c.EnsureIndex(index); err != nil {
			return err
		}
	}
	return nil
}

func validNames(features []feature.Feature) error {
	for _, f := range features {
		fName := f.Name()
		if fName == "_id" {
			return fmt.Errorf("invalid feature name %q: reserved collection field", "_id")
		}
		if strings.ContainsAny(fName, ".$") {
			return fmt.Errorf("invalid feature name %q: contains reserved characters %q or %q", fName, ".", "$")
		}
	}
	return nil
}
