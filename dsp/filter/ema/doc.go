// Package ema provides first-order exponential moving-average filters: a
// low-pass smoother and a rectifying envelope detector built on top of it.
//
// Both filters are tiny recursive sections of the form
//
//	y[n] = alpha*x[n] + (1-alpha)*y[n-1]
//
// with state initialized to zero. They are stateful and not safe for
// concurrent use; create one per stream (or per generation call).
package ema
