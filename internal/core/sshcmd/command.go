// Package sshcmd builds the ssh invocation used to reach fleet instances.
// Pure string construction; running the command is the caller's business.
package sshcmd

import "strings"

// Options carries the optional segments of the invocation. Empty fields are
// omitted from the command entirely.
type Options struct {
	KeyPath string // private key file, rendered as -i <path>
	User    string // login user, rendered as -l <user>
}

// Args returns the invocation as an argv slice, without the leading "ssh".
// Host key checking is always disabled: fleet instances are recycled and
// their host keys churn.
func Args(endpoint, remoteCommand string, opts Options) []string {
	args := []string{"-t", "-o", "UserKnownHostsFile=/dev/null", "-o", "StrictHostKeyChecking=no"}
	if opts.KeyPath != "" {
		args = append(args, "-i", opts.KeyPath)
	}
	if opts.User != "" {
		args = append(args, "-l", opts.User)
	}
	args = append(args, endpoint)
	if remoteCommand != "" {
		args = append(args, remoteCommand)
	}
	return args
}

// Command returns the full invocation as a single printable string.
func Command(endpoint, remoteCommand string, opts Options) string {
	return "ssh " + strings.Join(Args(endpoint, remoteCommand, opts), " ")
}
