/*
 * rjvm-learn - A study-scale Java virtual machine
 * Adapted from Jacobin VM. Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package frame implements the call stack, per-invocation frames, and the
// bytecode dispatch loop described in spec §4.5.
package frame

import (
	"fmt"

	"github.com/cnxfgit/rjvm-learn/heap"
)

// JavaException wraps a heap throwable. It is the guest-visible counterpart
// to verr.VmError: it participates in catch-handler search, where a
// VmError aborts the current invocation stack unconditionally.
type JavaException struct {
	Ref heap.Reference
}

func (e *JavaException) Error() string {
	return fmt.Sprintf("exception thrown: ref@%d", e.Ref)
}

// AsJavaException reports whether err is a thrown guest exception, and
// returns it if so.
func AsJavaException(err error) (*JavaException, bool) {
	je, ok := err.(*JavaException)
	return je, ok
}
