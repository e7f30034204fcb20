// Package rfp defines the records the review workspace reads from the backend
// (projects, questions, documents, attributes, usage) and validates them at
// the boundary before anything else sees them.
package rfp
