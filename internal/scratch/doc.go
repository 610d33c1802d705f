// Package scratch finds and removes the hidden working files that timeline
// assembly creates next to its outputs.
package scratch
