// Package types defines the shared data model for the retrieval engine:
// ordinance documents, search queries, and search results.
package types
