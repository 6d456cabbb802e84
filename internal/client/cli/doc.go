// Package cli implements the interactive command-line client.
//
// The REPL keeps a local list of pending uploads and submits it to the
// upload endpoint with the stored credentials:
//
//	login                     verify credentials with the server and store them
//	logout                    forget stored credentials
//	add <path> [name...]      queue a file (name defaults to the file's base name)
//	list                      show the queue
//	rename <n> <name...>      change the display name of item n
//	delete <n>                remove item n
//	clear                     empty the queue
//	send                      deliver the queue; Ctrl+C abandons the run
//	reports                   show the latest server-side reports
//	exit | quit               leave the program
//
// Items are addressed by their 1-based position in the last listing.
package cli
