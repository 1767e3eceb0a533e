package queue

import (
	"fmt"

	"github.com/google/uuid"
)

// Job represents a dataset to cross-validate on a batch run
type Job struct {
	// ID identifies the job on its queue
	ID string
	// Path is the location of the dataset file
	Path string
	// Output is the path of the file where results
	// for the dataset must be written
	Output string
	// Seed for the random sources used to process the job
	Seed int64
}

// NewJob takes the path to a dataset, the path to write its
// results to and a seed and returns a job for them with a random ID
func NewJob(path, output string, seed int64) *Job {
	return &Job{ID: uuid.New().String(), Path: path, Output: output, Seed: seed}
}

func (j *Job) String() string {
	return fmt.Sprintf("{Job %s %s}", j.ID, j.Path)
}
