// Package task validates, identifies, and persists task records.
//
// A task is created from raw form input in four steps:
//
//  1. The input is validated against an embedded JSON Schema. Failures are
//     reported as FieldErrors keyed by form field name.
//  2. A random UUID is assigned as the task ID.
//  3. The task is appended to the caller's current sequence.
//  4. The whole sequence is written back through the Store.
//
// # Storage Format
//
// The Store keeps every task under a single key ("tasks") of a string
// key-value store. The value is a JSON array:
//
//	[
//	  {
//	    "id": "0b7d6c1e-2f44-4a8e-9d59-3c1b2f0c8a11",
//	    "title": "Buy milk",
//	    "description": "",
//	    "status": false
//	  }
//	]
//
// Every Save rewrites the entire array. The format carries no version
// field, so any change to it is a breaking change.
//
// # Load Validation
//
// By default Load checks the stored value against the record schema
// (non-empty id and title, typed fields) and rejects duplicate IDs. A value
// that fails is reported as a *MalformedStoreError. WithTrustingLoad
// disables these checks and only decodes the JSON.
package task
