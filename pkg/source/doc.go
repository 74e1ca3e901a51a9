// Package source supplies the configuration document text.
//
// A Source hides where the document lives; the daemon calls Load on
// every apply so edits take effect on the next start transition
// without restarting the process.
//
// # Implementations
//
//   - FileSource reads a local file with a size bound
//   - GitSource clones (or opens) a repository and reads one file,
//     optionally pulling before each load
//   - MemorySource holds the text in memory, for tests and embedding
//
// # Usage
//
//	src, err := source.New(&cfg.Source, logger)
//	if err != nil {
//	    return err
//	}
//
//	text, err := src.Load(ctx)
//	if err != nil {
//	    return err
//	}
//	if err := reg.Apply(text); err != nil {
//	    return err
//	}
//
// Describe identifies the source for logs and audit records, e.g.
// "file:/etc/tempesta/tempesta.conf" or
// "git:https://example.com/cfg.git#main/tempesta.conf@1a2b3c4d5e6f".
package source
