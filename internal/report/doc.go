// Package report accumulates transfer evaluation results in a CSV file
// shared across runs.
package report
