// Package signal simulates a sampled amplitude-modulated carrier and runs it
// through the scope's low-pass filter and envelope detector.
//
// Every call to Generate is an independent simulation starting from zero
// filter state; nothing is carried between calls.
package signal
