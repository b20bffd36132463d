package resource

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/udhos/gwob"
)

// LoadOBJ reads the first object of a Wavefront OBJ file.
func LoadOBJ(path string) (MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return MeshData{}, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()
	data, err := parseOBJ(path, f)
	if err != nil {
		return MeshData{}, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// ParseOBJ reads triangles and quads, splitting each quad in two. Each
// distinct position/texcoord/normal combination becomes one indexed vertex.
// Only the first object is kept.
func ParseOBJ(r io.Reader) (MeshData, error) {
	return parseOBJ("model", r)
}

// objProblems collects what gwob reports while parsing. gwob logs bad lines
// and keeps going; statements it does not know are skipped, anything else
// fails the model.
type objProblems struct {
	first error
}

func (p *objProblems) log(msg string) {
	if p.first != nil {
		return
	}
	if !strings.HasPrefix(msg, "readLines: ") && !strings.HasPrefix(msg, "scanLines: ") {
		return
	}
	if strings.HasSuffix(msg, "]: unexpected") {
		return
	}
	p.first = errors.New(msg)
}

func parseOBJ(name string, r io.Reader) (data MeshData, err error) {
	// gwob indexes normals without a bounds check.
	defer func() {
		if v := recover(); v != nil {
			data, err = MeshData{}, fmt.Errorf("malformed obj: %v", v)
		}
	}()

	problems := &objProblems{}
	o, err := gwob.NewObjFromReader(name, r, &gwob.ObjParserOptions{Logger: problems.log})
	if err != nil {
		return MeshData{}, err
	}
	if problems.first != nil {
		return MeshData{}, problems.first
	}
	return meshFromObj(o)
}

// firstObject returns the index range of the first named object. gwob
// starts a new group on every material or smoothing change, so adjacent
// groups sharing the name belong to the same object.
func firstObject(o *gwob.Obj) (begin, end int) {
	var first *gwob.Group
	for _, g := range o.Groups {
		if g.IndexCount <= 0 {
			continue
		}
		if first == nil {
			first = g
			begin, end = g.IndexBegin, g.IndexBegin+g.IndexCount
			continue
		}
		if g.Name != first.Name || g.IndexBegin != end {
			break
		}
		end += g.IndexCount
	}
	return begin, end
}

func meshFromObj(o *gwob.Obj) (MeshData, error) {
	stride := o.StrideSize / 4
	if len(o.Indices) > 0 {
		highest := 0
		for _, i := range o.Indices {
			if i > highest {
				highest = i
			}
		}
		if (highest+1)*stride != len(o.Coord) {
			return MeshData{}, errors.New("faces mix vertex layouts")
		}
	}

	begin, end := firstObject(o)
	var out MeshData
	remap := make(map[int]uint32)
	for _, i := range o.Indices[begin:end] {
		idx, ok := remap[i]
		if !ok {
			idx = uint32(len(remap))
			remap[i] = idx
			base := i * stride
			pos := base + o.StrideOffsetPosition/4
			out.Vertices = append(out.Vertices, o.Coord[pos:pos+3]...)
			if o.TextCoordFound {
				uv := base + o.StrideOffsetTexture/4
				out.TexCoords = append(out.TexCoords, o.Coord[uv:uv+2]...)
			}
			if o.NormCoordFound {
				n := base + o.StrideOffsetNormal/4
				out.Normals = append(out.Normals, o.Coord[n:n+3]...)
			}
		}
		out.Indices = append(out.Indices, idx)
	}
	return out, nil
}
