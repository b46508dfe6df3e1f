package render

import "errors"

var (
	ErrUnknownShader      = errors.New("render: unknown shader")
	ErrUnknownTexture     = errors.New("render: unknown texture")
	ErrUnsupportedCommand = errors.New("render: unsupported command type")
	ErrMalformedVertices  = errors.New("render: vertex data is not a whole number of triangles")
	ErrNotInitialized     = errors.New("render: backend not initialized")
)
