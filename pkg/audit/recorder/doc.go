// Package recorder builds audit records from configuration lifecycle
// cycles and writes them to storage asynchronously.
//
// RecordApply and RecordShutdown enqueue to a buffered channel and
// return immediately; a background worker drains the channel into the
// storage backend. Close drains whatever is still buffered, so records
// enqueued before shutdown are not lost. When the channel stays full
// for a whole write timeout the record is dropped and an error
// returned, keeping a broken disk from wedging configuration
// transitions.
package recorder
