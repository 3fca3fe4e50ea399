// Package textutil provides the text matching used by catalog and sheet
// searches.
//
// Matching is case-insensitive and accent-insensitive: text is decomposed
// (NFD), combining marks are stripped, and the result is lower-cased, so
// "Éthyl" and "ethyl" compare equal. Queries are split on whitespace and every
// token must appear somewhere in the haystack.
package textutil
