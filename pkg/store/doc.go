// Package store defines the durable medium a save container is written to.
//
// Responsibilities:
//   - Store only loads and saves opaque payloads under a name. It knows
//     nothing about entities, hashes or obfuscation; those stay in the
//     savestate package.
//   - Save must be atomic: after a failed Save the previous payload (or its
//     absence) is still what Load returns.
//   - Implementations serialise their own writers; callers do not need to
//     hold a lock around Save.
//
// Implementations:
//
//	MemoryStore            in-process map, for tests and examples
//	FileStore              one file per name, temp file + rename
//	sqlitestore.Store      one row per name in a SQLite database
package store
