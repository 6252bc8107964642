// Package server implements the MCP (Model Context Protocol) server for
// reference-image analysis.
//
// This package provides a JSON-RPC 2.0 server that exposes the FrameMatch
// analysis through the MCP protocol, so that an assistant can inspect a
// reference frame and produce a grading LUT for it.
//
// # Protocol
//
// Requests arrive one per line on the input stream and each response is
// written as a single JSON line. The methods understood are initialize,
// tools/list, tools/call and ping; notifications get no reply, and a line
// that is not valid JSON gets a parse error (-32700).
//
// # Available Tools
//
// Image Information:
//   - frame_load: Decode an image and report its dimensions, format and EXIF
//   - frame_forget: Drop an image from the cache
//
// Analysis:
//   - frame_analyze: Camera, lighting and color estimates with summary and
//     recreation guide
//   - frame_features: Raw pixel statistics behind the estimates
//
// Color:
//   - frame_palette: Dominant colors, optionally within a region
//   - frame_palette_swatch: Dominant colors rendered as a PNG strip
//
// LUT:
//   - frame_generate_lut: .cube 3D LUT reproducing the color grade
//
// # Image Caching
//
// The server keeps decoded images in memory, keyed by path, for the lifetime
// of the process. frame_forget evicts one entry.
//
// # Error Handling
//
// A tool that cannot run answers with code -32000 and the underlying error
// text in data. A tools/call whose params do not parse answers with -32602.
//
// An estimator that fails inside frame_analyze does not fail the call; its
// fallback is reported and listed in the report diagnostics.
//
// # Usage
//
//	srv := server.New(server.Options{Analyzer: a, Logger: log})
//	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
//	    log.Fatal().Err(err).Msg("server error")
//	}
package server
