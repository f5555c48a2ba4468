// Package window provides the analysis windows applied to scope frames
// before spectral analysis.
package window
