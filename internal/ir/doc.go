// Package ir provides the shared value vocabulary of joinkit.
//
// This package contains the types every other internal package agrees on:
// column values, column types, comparison operators, the error taxonomy and
// the canonical encodings used for index keys and printed output. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Value is a sealed interface: Null, String, Int, Long, Double, Bool
//   - Null never satisfies a comparison, not even Equal against Null
//   - Double equality is exact bit equality (no epsilon), ordering is total
//   - Construction-time errors and execution-time errors share one Error type
package ir
