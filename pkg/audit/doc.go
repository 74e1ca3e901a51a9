// Package audit records configuration lifecycle cycles as immutable
// audit records. Every apply and every shutdown produces one record
// capturing what ran, what triggered it, and how it ended.
//
// # Architecture
//
// The audit system consists of three layers:
//
//  1. Recorder - builds records from lifecycle cycles and writes them
//     asynchronously (pkg/audit/recorder)
//  2. Storage - persists records in memory or SQLite (pkg/audit/storage)
//  3. Retention - prunes old records on a cron schedule (pkg/audit/retention)
//
// # Audit Records
//
// Each record captures:
//   - Event (apply or shutdown) and what triggered it
//   - Outcome and the error text on failure
//   - Cycle duration
//   - SHA-256 of the applied configuration text
//   - Source description (file path, git remote) and module count
//
// # Recording Flow
//
// Records are written asynchronously so a slow disk never blocks a
// configuration transition:
//
//	lifecycle cycle finishes
//	     |
//	recorder builds Record (uuid, hash, outcome)
//	     |
//	buffered channel -> worker goroutine -> Storage
//
// Close drains the channel before returning, so records enqueued
// before shutdown are not lost.
//
// # Retention
//
// The retention pruner deletes records older than a configured number
// of days and, independently, keeps the total record count under a
// configured maximum. Pruning runs on a cron schedule (for example
// "0 3 * * *" for daily at 3 AM).
package audit
