// Package storage handles cloud object storage of user resumes. It
// provides an uploader used by the profile API to store resume files and
// a resolver used by the worker to materialize a stored resume as a local
// temporary file for the duration of one processing attempt.
package storage
