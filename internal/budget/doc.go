// Package budget converts model parameter storage into an equivalent exemplar budget.
//
// Replay-based continual learning methods keep a fixed memory of raw training images
// (exemplars). Methods that grow their network per task pay for that growth in parameters
// instead. The Converter expresses the parameter difference between two methods as a number of
// extra exemplars, so methods can be compared under a matched total memory cost.
//
// The calculation is split in three parts: the Resolver derives the task schedule of a
// dataset split, the ParamTable maps datasets and curve points to backbone parameter counts,
// and the Converter applies the protocol specific accounting.
package budget
