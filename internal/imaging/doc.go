// Package imaging turns encoded image bytes into the pixel-domain data the
// estimators work from.
//
// The pipeline inside this package is:
//
//	bytes -> Decode -> Raster -> NewGrayField -> Extract -> FeatureVector
//
// Decode applies EXIF orientation, reads the EXIF camera fields, and caps the
// working resolution. A Raster is immutable once built. GrayField and
// FeatureVector are plain derived values; nothing in this package keeps state
// between calls, so every function is safe to call concurrently on different
// or shared inputs.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner.
// Regions use (X1,Y1) inclusive and (X2,Y2) exclusive.
//
// # Luminance
//
// Luminance uses the ITU-R BT.601 weights (0.299, 0.587, 0.114) on 8-bit
// components, so gray values range over [0, 255].
//
// # Errors
//
// Decoding fails with one of three sentinels, wrapped with detail:
//   - ErrDecodeFailure: empty, truncated or corrupt data
//   - ErrUnsupportedFormat: no registered decoder recognises the data
//   - ErrDimensionTooSmall: either side is below the minimum dimension
//
// Test with errors.Is.
package imaging
