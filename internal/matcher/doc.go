// Package matcher decides which recordings belong to which scheduled game.
//
// Files in capture order are partitioned into groups by their rolling
// counter, split at operator-declared boundary markers, stripped of short
// single-file false starts, and zipped against the court schedule while
// honouring operator-declared missed games. Surplus groups and unrecorded
// games are reported rather than guessed at.
package matcher
