package main

import "errors"

var (
	// errFetchFailed is returned after the fetch error has been printed.
	errFetchFailed = errors.New("fetch failed")

	// errCaptureFailed is returned when at least one screenshot failed.
	errCaptureFailed = errors.New("one or more screenshots failed")
)
