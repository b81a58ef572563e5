package processors

import (
	"fmt"
	"math"
	"sort"

	"github.com/leftmike/gcodeproc/gcode"
)

// MeshLeveler adjusts the Z of G0 and G1 moves to follow a measured surface. The surface is
// sampled on a grid: mesh[i][j] is the sample in column i and row j; every sample in a column
// has the same X and every sample in a row has the same Y.
type MeshLeveler struct {
	materialHeight float64 // mesh units
	mesh           [][]gcode.Position
	xs             []float64
	ys             []float64
	units          gcode.Units
	decimals       int

	lastZ float64 // mm; the last Z explicitly commanded
}

func NewMeshLeveler(materialSurfaceHeightMM float64, mesh [][]gcode.Position,
	decimals int) (*MeshLeveler, error) {

	if len(mesh) < 2 || len(mesh[0]) < 2 {
		return nil, &MeshShapeError{Reason: "not enough samples: need at least 2 in X and Y"}
	}

	units := mesh[0][0].Units
	cols := len(mesh[0])
	copied := make([][]gcode.Position, len(mesh))
	for i := range mesh {
		if len(mesh[i]) != cols {
			return nil, &MeshShapeError{
				Reason: fmt.Sprintf("column %d has %d samples; expected %d", i, len(mesh[i]),
					cols),
			}
		}
		copied[i] = make([]gcode.Position, cols)
		for j := range mesh[i] {
			copied[i][j] = mesh[i][j].In(units)
		}
	}

	xs := make([]float64, len(copied))
	ys := make([]float64, cols)
	for i := range copied {
		xs[i] = copied[i][0].X
		for j := range copied[i] {
			pos := copied[i][j]
			if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsNaN(pos.Z) {
				return nil, &MeshShapeError{
					Reason: fmt.Sprintf("sample %d,%d is missing an axis", i, j),
				}
			}
			if pos.X != xs[i] {
				return nil, &MeshShapeError{
					Reason: fmt.Sprintf("X values are not aligned in column %d", i),
				}
			}
			if i == 0 {
				ys[j] = pos.Y
			} else if pos.Y != ys[j] {
				return nil, &MeshShapeError{
					Reason: fmt.Sprintf("Y values are not aligned in row %d", j),
				}
			}
		}
	}

	for i := 1; i < len(xs); i += 1 {
		if xs[i] <= xs[i-1] {
			return nil, &MeshShapeError{Reason: "X values must be strictly ascending"}
		}
	}
	for j := 1; j < len(ys); j += 1 {
		if ys[j] <= ys[j-1] {
			return nil, &MeshShapeError{Reason: "Y values must be strictly ascending"}
		}
	}

	return &MeshLeveler{
		materialHeight: materialSurfaceHeightMM * gcode.ScaleUnits(gcode.MM, units),
		mesh:           copied,
		xs:             xs,
		ys:             ys,
		units:          units,
		decimals:       decimals,
		lastZ:          math.NaN(),
	}, nil
}

// cell returns the index of the cell containing v, which must be within vals.
func cell(vals []float64, v float64) int {
	i := sort.Search(len(vals), func(k int) bool { return vals[k] > v }) - 1
	if i < 0 {
		i = 0
	} else if i > len(vals)-2 {
		i = len(vals) - 2
	}
	return i
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	} else if v > hi {
		return hi
	}
	return v
}

// SurfaceHeight interpolates the Z of the surface at x, y, all in the units of the mesh.
// Points outside of the mesh use the nearest point on its edge.
func (ml *MeshLeveler) SurfaceHeight(x, y float64) float64 {
	x = clamp(x, ml.xs[0], ml.xs[len(ml.xs)-1])
	y = clamp(y, ml.ys[0], ml.ys[len(ml.ys)-1])
	i := cell(ml.xs, x)
	j := cell(ml.ys, y)

	tx := (x - ml.xs[i]) / (ml.xs[i+1] - ml.xs[i])
	ty := (y - ml.ys[j]) / (ml.ys[j+1] - ml.ys[j])

	q11 := ml.mesh[i][j].Z
	q21 := ml.mesh[i+1][j].Z
	q12 := ml.mesh[i][j+1].Z
	q22 := ml.mesh[i+1][j+1].Z

	r1 := q11 + (q21-q11)*tx
	r2 := q12 + (q22-q12)*tx
	return r1 + (r2-r1)*ty
}

// offset returns how far the surface at pos is above the material, in units.
func (ml *MeshLeveler) offset(pos gcode.Position, units gcode.Units) float64 {
	pos = pos.In(ml.units)
	return (ml.SurfaceHeight(pos.X, pos.Y) - ml.materialHeight) *
		gcode.ScaleUnits(ml.units, units)
}

func (ml *MeshLeveler) Process(command string, state gcode.State) ([]string, error) {
	cmd, err := motionCommand(command, state)
	if err != nil {
		return nil, err
	}
	if cmd == nil || cmd.End == nil {
		return single(command), nil
	}
	if cmd.Arc != nil {
		return nil, fmt.Errorf("%w: arcs must be expanded before leveling: %q", ErrUnexpectedArc,
			command)
	}
	if cmd.Code != gcode.G0 && cmd.Code != gcode.G1 {
		return single(command), nil
	}

	end := *cmd.End
	if math.IsNaN(end.X) || math.IsNaN(end.Y) {
		return single(command), nil
	}

	words, err := gcode.ParseWords(command)
	if err != nil {
		return nil, err
	}
	zWord, hasZ := gcode.FindWord(words, 'Z')
	units := cmd.State.Units

	var z float64
	if cmd.State.IsAbsolute() {
		if hasZ {
			ml.lastZ = zWord.Value * gcode.ScaleUnits(units, gcode.MM)
		} else if math.IsNaN(ml.lastZ) {
			ml.lastZ = cmd.Start.Z * gcode.ScaleUnits(units, gcode.MM)
		}
		if math.IsNaN(ml.lastZ) {
			return single(command), nil
		}
		z = ml.lastZ*gcode.ScaleUnits(gcode.MM, units) + ml.offset(end, units)
	} else {
		start := cmd.Start
		if math.IsNaN(start.X) || math.IsNaN(start.Y) {
			return single(command), nil
		}
		if hasZ {
			z = zWord.Value
		}
		z += ml.offset(end, units) - ml.offset(start, units)
		if !math.IsNaN(end.Z) {
			ml.lastZ = end.Z * gcode.ScaleUnits(units, gcode.MM)
		}
	}

	leveled, err := gcode.OverrideAxis(command, 'Z', z, ml.decimals)
	if err != nil {
		return nil, err
	}
	return single(leveled), nil
}

func (ml *MeshLeveler) Reset() {
	ml.lastZ = math.NaN()
}

func (ml *MeshLeveler) Help() string {
	return fmt.Sprintf("Adjusts Z to follow a %dx%d measured surface mesh.", len(ml.xs), len(ml.ys))
}
