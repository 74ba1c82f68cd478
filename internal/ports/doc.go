// Package ports expands textual port specifications into concrete port lists.
// A specification is an ordered list of tokens, each either a single port
// ("80") or an inclusive range ("11000-12000").
package ports
