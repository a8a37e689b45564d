// Package sweep runs the exemplar budget over the dataset, model and curve point combinations
// of an experiment protocol.
//
// A Planner expands a protocol into Jobs. Every Job carries its own ExperimentConfig value, so
// jobs can be computed in any order; the Runner fans them out over a bounded worker pool and
// returns the rows in plan order.
package sweep
