package resource

import (
	"path/filepath"

	"go.uber.org/zap"
)

type Format int

const (
	FormatUnknown Format = iota
	FormatOBJ
	FormatGLTF
)

func (f Format) String() string {
	switch f {
	case FormatOBJ:
		return "obj"
	case FormatGLTF:
		return "gltf"
	}
	return "unknown"
}

// FormatOf classifies a model path by its extension.
func FormatOf(path string) Format {
	switch filepath.Ext(path) {
	case ".obj":
		return FormatOBJ
	case ".gltf", ".glb":
		return FormatGLTF
	}
	return FormatUnknown
}

// Model is what a model file produced. Mesh is empty for glTF documents and
// unsupported formats.
type Model struct {
	Path   string
	Format Format
	Mesh   MeshData
	GLTF   *GLTFSummary
}

// LoadModel dispatches on the file extension. An unsupported extension is
// not an error: it leaves the model empty.
func LoadModel(path string, logger *zap.Logger) (*Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Model{Path: path, Format: FormatOf(path)}
	switch m.Format {
	case FormatOBJ:
		data, err := LoadOBJ(path)
		if err != nil {
			return nil, err
		}
		m.Mesh = data
		logger.Debug("obj model loaded",
			zap.String("path", path),
			zap.Int("vertices", data.VertexCount()),
			zap.Int("indices", len(data.Indices)))
	case FormatGLTF:
		summary, err := InspectGLTF(path)
		if err != nil {
			return nil, err
		}
		m.GLTF = summary
		logger.Info("gltf model inspected", append([]zap.Field{zap.String("path", path)}, summary.Fields()...)...)
	default:
		logger.Info("unsupported model format", zap.String("path", path))
	}
	return m, nil
}
