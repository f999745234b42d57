// Package transport rewrites a presentation tree into an email-safe form.
//
// Normalize works on a deep clone and never touches the on-screen tree. It
// prunes interactive blocks, checks that every remaining kind has an inline
// style rule, rasterizes images to a bounded width and materializes inline
// styles from a single declarative Table. Running it on its own output
// changes nothing.
package transport
