// Package docstore is an in-memory key-path JSON document store served over
// HTTP with gin. It speaks the same protocol the café's remote store does:
//
//	GET    /<path>.json   value at path, or null
//	PUT    /<path>.json   replace value at path (null deletes)
//	PATCH  /<path>.json   merge object members into path
//	DELETE /<path>.json   remove path
//
// Objects whose keys are all small non-negative integers are served as JSON
// arrays with null holes, as hosted document stores commonly do.
//
// The store exists for local development (moacafe devstore) and for tests,
// which use its fault controls to simulate locked rules and slow networks.
package docstore
