package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema of the image path argument shared by every tool.
func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image information
		{
			Name:        "frame_load",
			Description: "Load an image and return its working and source dimensions, format and EXIF camera fields. The decoded image is cached for subsequent calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_forget",
			Description: "Drop an image from the cache so the next call reads it from disk again.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Analysis
		{
			Name:        "frame_analyze",
			Description: "Estimate the camera settings, lighting setup and color grade of a reference image, with a summary and a step-by-step recreation guide.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_features",
			Description: "Return the raw pixel statistics behind the estimates: radial sharpness profile, vignette score, gradient variances, brightness, noise and Laplacian sharpness.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Color
		{
			Name:        "frame_palette",
			Description: "Extract the dominant colors of an image, most frequent first, optionally within a rectangular region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to return. Default 5",
						"default":     5,
					},
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Optional region to sample {x1, y1, x2, y2}, x2 and y2 exclusive",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_palette_swatch",
			Description: "Render the dominant colors as a labelled PNG strip and return it base64-encoded.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of swatches. Default 5",
						"default":     5,
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Strip width in pixels (at most 4096). Default 500",
						"default":     500,
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Strip height in pixels (at most 4096). Default 100",
						"default":     100,
					},
				},
				"required": []string{"path"},
			},
		},

		// LUT
		{
			Name:        "frame_generate_lut",
			Description: "Generate a .cube 3D LUT reproducing the image's color grade. The cube text is returned unless an output path is given, in which case it is written there.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"size": map[string]interface{}{
						"type":        "integer",
						"description": "Grid points per axis (2-256). Default 17",
						"default":     17,
					},
					"title": map[string]interface{}{
						"type":        "string",
						"description": "TITLE written in the cube header",
					},
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Optional absolute path of the .cube file to write",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
