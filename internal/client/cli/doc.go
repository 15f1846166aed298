// Package cli is the shardfetch command-line front end.
//
// Two modes share one downloads.Client:
//
//	shardfetch [flags] get <container-id|owner/container> <file> [-o out]
//	shardfetch [flags]
//
// The first downloads a single file and writes it to out (stdout when
// omitted). The second starts a REPL; see runREPL for its commands.
package cli
