package mesh

// BoxVertexCount is the number of vertices in one cell primitive (4 per face, 6 faces).
const BoxVertexCount = 24

// BoxIndexCount is the number of indices in one cell primitive (2 triangles per face).
const BoxIndexCount = 36

// boxFace describes one face of the unit box as a plane spanned by the u and v axes,
// pushed out along the w axis.
type boxFace struct {
	u, v, w    int
	uDir, vDir float32
	wSign      float32
}

// unitBoxFaces lists faces in +X, -X, +Y, -Y, +Z, -Z order.
var unitBoxFaces = [6]boxFace{
	{u: 2, v: 1, w: 0, uDir: -1, vDir: -1, wSign: 1},
	{u: 2, v: 1, w: 0, uDir: 1, vDir: -1, wSign: -1},
	{u: 0, v: 2, w: 1, uDir: 1, vDir: 1, wSign: 1},
	{u: 0, v: 2, w: 1, uDir: 1, vDir: -1, wSign: -1},
	{u: 0, v: 1, w: 2, uDir: 1, vDir: -1, wSign: 1},
	{u: 0, v: 1, w: 2, uDir: -1, vDir: -1, wSign: -1},
}

// unitBox holds the 24 corner positions and 36 local indices of a 1x1x1 box centred on the origin.
var unitBox = buildUnitBox()

type box struct {
	positions [BoxVertexCount][3]float32
	indices   [BoxIndexCount]uint32
}

func buildUnitBox() box {
	var b box
	vi, ii := 0, 0
	for _, f := range unitBoxFaces {
		base := uint32(vi)
		for iy := 0; iy < 2; iy++ {
			y := float32(iy) - 0.5
			for ix := 0; ix < 2; ix++ {
				x := float32(ix) - 0.5
				var p [3]float32
				p[f.u] = x * f.uDir
				p[f.v] = y * f.vDir
				p[f.w] = 0.5 * f.wSign
				b.positions[vi] = p
				vi++
			}
		}
		a, bb, c, d := base, base+2, base+3, base+1
		b.indices[ii+0], b.indices[ii+1], b.indices[ii+2] = a, bb, d
		b.indices[ii+3], b.indices[ii+4], b.indices[ii+5] = bb, c, d
		ii += 6
	}
	return b
}
