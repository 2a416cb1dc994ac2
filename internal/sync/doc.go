// Package sync implements the title synchronization and review-ingestion
// pipeline: diffing the downloaded catalog against the persisted snapshot,
// driving resilient cursor-paginated review fetches, filtering the results,
// and committing them in idempotent batches.
//
// The pieces compose as Diff -> mark-for-update -> Orchestrator -> Session ->
// ReviewFilter -> stores. Review upsert and flag clearing are two separate
// store operations; a crash between them is safe to re-run because review
// persistence is keyed on review id.
package sync
