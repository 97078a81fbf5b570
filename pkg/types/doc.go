// Package types defines the core types and interfaces used throughout vary.
// This includes the VariationRecord stored in the registry, the FS and
// Pather interfaces used for dependency injection, and the option and
// result structures passed between the command layer and the engine.
package types
