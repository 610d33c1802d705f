// Package organize runs the matching stage for one court: it lists the
// recordings, loads the court's schedule, matches the two, copies each
// game's files to numbered part files under processed_videos, and writes
// metadata.json for assembly.
//
// The recordings directory is locked for the duration of a run.
package organize
