// Package artifact reads and writes serialized template tables.
//
// A table file is named after its encoding: the codec extension (.json,
// .cbor or .msgpack) optionally followed by a compression extension (.zst
// or .lz4), as in templates.cbor.zst. Tables are loaded from a local path
// or from s3://bucket/key.
//
// CBOR uses Core Deterministic Encoding, so the same table always produces
// the same bytes. Digest hashes the uncompressed encoding with BLAKE3 and is
// logged when a table is loaded, which makes a stale table easy to spot.
package artifact
