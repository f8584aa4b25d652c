// Package provenance gives every calculation value a deterministic,
// tamper-evident content hash capturing its operation lineage.
//
// # Overview
//
// A provenance record describes one production step:
//
//	[op] over [parent ids] under [policy] with [meta]
//
// For example:
//   - literal 100.00 under places=2;rounding=half_up
//   - "+" over (a1b2…, c3d4…) with unit=Currency[USD]
//   - calc:gross_profit over (…, …) with calculation=gross_profit
//
// # Content addressing
//
// A record's id is a pure function of its operation kind, its sorted parent
// ids, its canonically serialized metadata, and the policy fingerprint.
// Identical computations always yield identical ids; any change to any
// component changes the id. Operand order never affects the id; semantic
// order is preserved separately in the record's inputs for display.
//
// # Performance
//
// Node hashing runs through a bounded LRU cache with hit/miss counters
// (GetCacheStats), and ids are interned to shared string instances
// (GetInternStats). Both are transparent: they affect memory and speed,
// never hashing results.
//
// # Spans
//
// Spans are named, attributed scopes stacked per goroutine. Any record
// stamped while a span is active carries the span snapshot in its metadata;
// concurrent goroutines never observe each other's frames.
//
// # Retention
//
// Values keep only their own record. Parents appear as ids, never pointers,
// so ancestor records are reclaimable independently. Callers needing full
// multi-hop lineage retain intermediate records themselves.
package provenance
