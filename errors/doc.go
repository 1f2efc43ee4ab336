// Package errors provides structured error types for the wasm-codecs module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the module name, a detail message and the cause chain.
//
// Three kinds describe the codec module lifecycle:
//
//	KindLoadFailure       the module's load call failed
//	KindModuleNotReady    an operation ran before the load completed or after it failed
//	KindOperationFailure  compress/decompress on a ready module failed
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCompress, errors.KindOperationFailure).
//		Module("zstd").
//		Detail("level %d out of range", 40).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.LoadFailure("snappy", cause)
//	err := errors.NotReady(errors.PhaseCompress, "zstd", state)
//
// All errors implement the standard error interface and support errors.Is/As.
// The Err* sentinels match on kind regardless of phase:
//
//	if errors.Is(err, errors.ErrModuleNotReady) { ... }
package errors
