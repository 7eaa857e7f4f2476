// Package table describes the tables a join reads from.
//
// It holds three things: typed identifiers and fields that the fluent
// API is written against, descriptors that report column types and size
// hints, and row sources that stream rows on demand. A Registry binds all
// three together and serves as the join compiler's metadata collaborator.
package table
