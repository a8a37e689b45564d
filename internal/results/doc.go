// Package results names the artifacts of a training run and appends its accuracy curves and
// wall-clock time to the per-protocol CSV files that the analysis notebooks read.
package results
