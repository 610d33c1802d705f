// Package textutil holds the small string helpers shared by the organizer
// and the assembler: team slugs for part file names, title casing for
// bracket rounds, and filename sanitization for final video names.
package textutil
