/*
Package json encodes batch jobs as JSON documents and decodes them back, so
queues like the one in package redisq can store them.
*/
package json

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hafniz/mlcore/queue"
)

/*
JobEncodeDecoder is an interface for objects
that allow encoding jobs as slices of bytes and
decoding them back to jobs.
*/
type JobEncodeDecoder interface {

	//Encode receives a *queue.Job
	// and returns a slice of bytes with the job encoded or an
	//error if the encoding could not be performed for
	//some reason.
	Encode(context.Context, *queue.Job) ([]byte, error)

	//Decode receives a slice of bytes
	//and returns a *queue.Job decoded from the slice of bytes
	//or an error if the decoding could not be performed
	//for some reason.
	Decode(context.Context, []byte) (*queue.Job, error)
}

type jsonEncodeDecoder struct{}

type jsonJob struct {
	ID     string `json:"id"`
	Path   string `json:"path"`
	Output string `json:"output,omitempty"`
	Seed   int64  `json:"seed"`
}

// New returns a JobEncodeDecoder that uses JSON objects
func New() JobEncodeDecoder {
	return jsonEncodeDecoder{}
}

func (jsonEncodeDecoder) Encode(ctx context.Context, j *queue.Job) ([]byte, error) {
	data, err := json.Marshal(&jsonJob{ID: j.ID, Path: j.Path, Output: j.Output, Seed: j.Seed})
	if err != nil {
		return nil, fmt.Errorf("encoding job %s as json: %w", j.ID, err)
	}
	return data, nil
}

func (jsonEncodeDecoder) Decode(ctx context.Context, data []byte) (*queue.Job, error) {
	jj := &jsonJob{}
	err := json.Unmarshal(data, jj)
	if err != nil {
		return nil, fmt.Errorf("decoding job from json: %w", err)
	}
	if jj.ID == "" || jj.Path == "" {
		return nil, errors.New("decoding job from json: missing id or path")
	}
	return &queue.Job{ID: jj.ID, Path: jj.Path, Output: jj.Output, Seed: jj.Seed}, nil
}
