// Package llmfetch extracts structured fields from HTML documents by asking a
// text-generation model for XPath expressions, and stores the extracted rows
// in per-job tables whose columns are derived from the requested field names.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, xpath/, gin/, openai/).
package llmfetch
