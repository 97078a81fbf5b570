// Package filesystem provides filesystem implementations for vary.
//
// This package contains implementations of the types.FS interface,
// including the standard OS filesystem used in production. Test
// filesystems live in pkg/testutil.
package filesystem
