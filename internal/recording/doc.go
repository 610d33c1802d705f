// Package recording reads a directory of camera recordings.
//
// Cameras split long recordings into chapters named <prefix><sub-index><counter>
// (GX010343.MP4, GX020343.MP4, ...). ParseName exposes those fields and List
// returns files in capture order, by modification time or by the embedded
// creation_time tag.
package recording
