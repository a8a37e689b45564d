// Package convnet describes the feature-extraction backbones used by the continual-learning
// experiments and counts their parameters.
//
// A Network is an ordered list of named Modules, each holding the Layers that carry weights.
// Only layers with learnable tensors contribute to CountParameters; running statistics of
// batch normalisation are buffers and are not counted.
//
// Backbones are addressed by identifier through GetConvnet. Identifiers prefixed with
// MemoPrefix return the two-part MEMO decomposition: a generalized trunk shared by every task
// and a specialized block replicated once per task.
package convnet
