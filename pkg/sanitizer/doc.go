// Package sanitizer provides input normalization functions for lookup keys.
//
// All functions are idempotent - applying them multiple times produces the
// same result - and total: unknown characters pass through unchanged and
// nothing ever returns an error.
//
// Normalization includes:
//   - Strings: Collapse whitespace, trim leading/trailing spaces
//   - Lookup keys: Lowercase, strip diacritics, turn punctuation runs
//     (parentheses, apostrophes, periods, hyphens, slashes) into single
//     spaces - "Côte D'Ivoire (Ivory Coast)" becomes "cote d ivoire ivory coast"
package sanitizer
