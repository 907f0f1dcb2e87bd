// Package rolling computes fixed-size window aggregates and shifts over a
// single float64 sequence with an explicit validity mask.
//
// Windows are positional: a backward window of size n at row i covers rows
// i-n+1..i and a forward window covers rows i..i+n-1. A window that would
// run past either end of the sequence yields a missing result. The package
// knows nothing about entities; callers repair cross-entity windows
// afterwards.
package rolling
