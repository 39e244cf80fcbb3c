// Package ratings normalizes third-party ratings onto a common 0-10 scale and
// computes the Bayesian composite rating used to rank catalogue entries.
package ratings
