// Package identify runs the per-file refinement loop: frames are filtered,
// sent to OCR, merged into a credits snapshot, and refined into a title guess
// until the guess is stable or the frames run out. An optional search-grounded
// fallback is consulted once when the loop ends without a usable title.
package identify
