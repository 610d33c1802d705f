// Package assembler turns matched games into finished videos.
//
// BuildPlan lays out an intro card, the game footage with manual trims
// applied to the first and last files, and an outro card. It probes every
// source first and rejects trims that do not fit, so nothing is cut until
// the whole timeline is known to be valid. Execute runs a plan through
// ffmpeg using stream copy for footage; AssembleAll does so for a batch of
// games in parallel, recording each attempt in the ledger.
//
// PlanWindow covers playoff footage, where a round is a fixed length of
// continuous recording starting at a known file and offset.
package assembler
