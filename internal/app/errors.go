package service

import "errors"

var (
	// ErrNotStarted is returned by operations that need the worker pipeline.
	ErrNotStarted = errors.New("service not started")
	// ErrBackpressure means the persistence queue is full.
	ErrBackpressure = errors.New("prediction queue full")
)
