/*
Package queue defines the jobs of a batch cross-validation run, one per
dataset, as well as an interface for a Queue to manage them.

It also provides an in-memory implementation of the Queue interface.
Package redisq provides one backed by redis, so several processes can share
the work of a batch run.
*/
package queue
