// Package store persists titles, reviews, and derived ratings in a local
// SQLite database. All exported methods wrap failures with ErrStore so
// callers can distinguish persistence faults from pipeline faults.
package store
