package server

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ironsheep/framematch/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "frame_analyze").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, CodeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Str("tool", params.Name).Err(err).Msg("tool failed")
		return s.errorResponse(req.ID, CodeToolFailure, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the analysis, imaging or lut function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image information
	case "frame_load":
		return s.handleFrameLoad(args)
	case "frame_forget":
		return s.handleFrameForget(args)

	// Analysis
	case "frame_analyze":
		return s.handleFrameAnalyze(ctx, args)
	case "frame_features":
		return s.handleFrameFeatures(ctx, args)

	// Color
	case "frame_palette":
		return s.handleFramePalette(args)
	case "frame_palette_swatch":
		return s.handleFramePaletteSwatch(args)

	// LUT
	case "frame_generate_lut":
		return s.handleFrameGenerateLUT(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type pathArgs struct {
	Path string `json:"path"`
}

// load unmarshals args into dst and loads the image named by path.
func (s *Server) load(args json.RawMessage, dst interface{}, path *string) (*imaging.Raster, error) {
	if err := json.Unmarshal(args, dst); err != nil {
		return nil, err
	}
	if *path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return s.cache.Load(*path)
}

// === Image Information Handlers ===

// FrameInfo is the result of frame_load.
type FrameInfo struct {
	Path string            `json:"path"`
	Info imaging.ImageInfo `json:"info"`
	Exif *imaging.ExifData `json:"exif,omitempty"`
}

func (s *Server) handleFrameLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	r, err := s.load(args, &a, &a.Path)
	if err != nil {
		return nil, err
	}
	return &FrameInfo{Path: a.Path, Info: r.Info(), Exif: r.Exif}, nil
}

func (s *Server) handleFrameForget(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	s.cache.Evict(a.Path)
	return map[string]interface{}{"path": a.Path, "cached": s.cache.Len()}, nil
}

// === Analysis Handlers ===

func (s *Server) handleFrameAnalyze(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	r, err := s.load(args, &a, &a.Path)
	if err != nil {
		return nil, err
	}
	return s.analyzer.Analyze(ctx, r)
}

// FrameFeatures is the result of frame_features.
type FrameFeatures struct {
	Info     imaging.ImageInfo      `json:"info"`
	Features *imaging.FeatureVector `json:"features"`
}

func (s *Server) handleFrameFeatures(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	r, err := s.load(args, &a, &a.Path)
	if err != nil {
		return nil, err
	}
	ex, err := s.analyzer.Extract(ctx, r)
	if err != nil {
		return nil, err
	}
	if ex.Err != nil {
		return nil, ex.Err
	}
	return &FrameFeatures{Info: r.Info(), Features: ex.Features}, nil
}

// === Color Handlers ===

type framePaletteArgs struct {
	Path   string `json:"path"`
	Count  int    `json:"count"`
	Region *struct {
		X1 int `json:"x1"`
		Y1 int `json:"y1"`
		X2 int `json:"x2"`
		Y2 int `json:"y2"`
	} `json:"region,omitempty"`
}

func (s *Server) handleFramePalette(args json.RawMessage) (interface{}, error) {
	var a framePaletteArgs
	r, err := s.load(args, &a, &a.Path)
	if err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 5
	}

	var region *imaging.Region
	if a.Region != nil {
		region = &imaging.Region{X1: a.Region.X1, Y1: a.Region.Y1, X2: a.Region.X2, Y2: a.Region.Y2}
	}
	return imaging.DominantColors(r.Pixels, a.Count, region)
}

type framePaletteSwatchArgs struct {
	Path   string `json:"path"`
	Count  int    `json:"count"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s *Server) handleFramePaletteSwatch(args json.RawMessage) (interface{}, error) {
	var a framePaletteSwatchArgs
	r, err := s.load(args, &a, &a.Path)
	if err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 5
	}
	palette, err := imaging.DominantColors(r.Pixels, a.Count, nil)
	if err != nil {
		return nil, err
	}
	return imaging.RenderSwatch(palette.Colors, a.Width, a.Height)
}

// === LUT Handlers ===

type frameGenerateLUTArgs struct {
	Path   string `json:"path"`
	Size   int    `json:"size"`
	Title  string `json:"title"`
	Output string `json:"output"`
}

// LUTResult is the result of frame_generate_lut.
type LUTResult struct {
	Title   string `json:"title"`
	Size    int    `json:"size"`
	Entries int    `json:"entries"`

	// Output is the written file; Cube holds the text when no file was
	// requested.
	Output string `json:"output,omitempty"`
	Cube   string `json:"cube,omitempty"`
}

func (s *Server) handleFrameGenerateLUT(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a frameGenerateLUTArgs
	r, err := s.load(args, &a, &a.Path)
	if err != nil {
		return nil, err
	}

	opts := s.lut
	if a.Size != 0 {
		opts.Size = a.Size
	}
	if a.Title != "" {
		opts.Title = a.Title
	}
	cube, err := s.analyzer.LUT(ctx, r, opts)
	if err != nil {
		return nil, err
	}

	res := &LUTResult{Title: cube.Title, Size: cube.Size, Entries: len(cube.Data)}
	if a.Output == "" {
		res.Cube = string(cube.Bytes())
		return res, nil
	}
	if err := os.WriteFile(a.Output, cube.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", a.Output, err)
	}
	res.Output = a.Output
	return res, nil
}
