// Package stats summarizes scope frames: per-channel time-domain statistics
// and spectral shape descriptors.
//
// Channel statistics are accumulated in a single pass using Welford's
// algorithm, so a frame can be measured incrementally or all at once with
// identical results.
package stats
