// Package corpuscrawl builds retrieval-ready text corpora from
// documentation websites. It crawls a site breadth-first, cleans each
// page into plain text, splits the text into overlapping chunks,
// deduplicates chunks by content hash, and appends the results to
// JSONL corpus files that are safe to resume after a crash.
//
// This package contains domain types and interfaces following Ben
// Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g. goquery/,
// robotstxt/, sqlite/).
package corpuscrawl
