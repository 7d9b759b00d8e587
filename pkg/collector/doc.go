// Package collector harvests channel statistics, playlist video ids, video
// details and top-level comments.
//
// Pagination and batching come from the pagination package; this package
// owns the field schema that flattens API items into records and the
// per-video error policy for comments.
package collector
