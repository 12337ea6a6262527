// Package kv provides string key-value stores for local persistence.
//
// File keeps every key in one JSON object on disk, the way a browser keeps
// local storage for a page. Memory is an in-process map for tests.
package kv
