// Package testutil provides the shared test scaffolding: isolated or
// in-memory environments wired to vary's paths and registry, an
// in-memory types.FS, fake capability implementations for git, the
// tree syncer and the cloner, and small file assertions.
//
// Engine and command tests run against the fakes; nothing in here
// shells out.
package testutil
