// Package masking redacts sensitive values inside decoded JSON bodies before
// they leave the process.
//
// # Semantics
//
// A PatternSet holds compiled, case-insensitive field-name matchers. The
// Engine walks a decoded JSON value with an explicit work stack (never native
// recursion, so attacker-controlled nesting cannot exhaust the goroutine
// stack) and replaces the entire value of every matching object key with the
// redaction token, whatever its original type. Non-matching scalars are left
// untouched; non-matching objects and arrays are descended into. Arrays carry
// no key context of their own.
//
// A depth cap bounds the traversal: subtrees nested past the cap are carried
// through untouched rather than failing the walk. This is a deliberate
// fail-safe for pathological input.
//
// Masking is idempotent: masking an already-masked tree changes nothing.
package masking
