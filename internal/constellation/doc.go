// Package constellation aggregates activity across gardens and letters.
//
// Every garden is normalized into Activities, summarized (counts plus its
// five most recent activities), and merged with letter activity into a
// single feed of at most ten entries ordered newest first. Gardens are also
// placed on a circle around a shared center for the visual view.
//
// All of the functions here are pure. The Aggregator reads the stores,
// isolates per-source failures, and recomputes the full View on every call.
//
// # Ordering
//
// Lists are sorted by timestamp descending with a stable sort, so equal
// timestamps keep their encounter order. Truncation always happens after
// sorting. Timestamps that fail to parse hold the zero instant and therefore
// sort after every real timestamp.
package constellation
