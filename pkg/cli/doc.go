// Package cli carries the command-line plumbing shared by the
// tempesta subcommands: typed errors telling configuration mistakes
// from command failures, signal-driven shutdown contexts, and output
// formatting for the query commands.
//
// Typed errors:
//
//	if err := doWork(); err != nil {
//		return cli.NewCommandError("check", err)
//	}
//
// Signal handling:
//
//	ctx, stop := cli.SetupSignalHandler()
//	defer stop()
//	// ctx is cancelled on SIGINT or SIGTERM
//
// Output formatting:
//
//	f := cli.NewFormatter(cli.FormatJSON)
//	if err := f.FormatTo(os.Stdout, records); err != nil {
//		return err
//	}
package cli
