package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/leftmike/gcodeproc/gcode"
	"github.com/leftmike/gcodeproc/processors"
)

// Arcs are drawn as lines of this length, in mm.
const previewSegmentMM = 0.5

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type previewMove struct {
	RapidTo  *point `json:"rapidTo,omitempty"`
	LinearTo *point `json:"linearTo,omitempty"`
}

type previewConfig struct {
	HomePos point `json:"homePos"`
	MinPos  point `json:"minPos"`
	MaxPos  point `json:"maxPos"`
}

// toolpath follows the processed commands and records every move, in mm.
type toolpath struct {
	interp *gcode.Interpreter
	moves  []previewMove
}

func newToolpath() *toolpath {
	return &toolpath{interp: gcode.NewInterpreter(gcode.NewState())}
}

func toPoint(pos gcode.Position) *point {
	pos = pos.In(gcode.MM)
	return &point{X: orZero(pos.X), Y: orZero(pos.Y), Z: orZero(pos.Z)}
}

func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func (tp *toolpath) add(command string) error {
	cmds, err := tp.interp.AddCommand(command, len(tp.moves))
	if err != nil {
		return err
	}

	for _, cmd := range cmds {
		if cmd.End == nil {
			continue
		}
		if cmd.Rapid {
			tp.moves = append(tp.moves, previewMove{RapidTo: toPoint(*cmd.End)})
			continue
		}

		points := []gcode.Position{*cmd.End}
		if cmd.Arc != nil {
			points = gcode.ExpandArc(cmd.Start, *cmd.End, *cmd.Arc,
				previewSegmentMM*gcode.ScaleUnits(gcode.MM, cmd.State.Units))
		}
		for _, pos := range points {
			tp.moves = append(tp.moves, previewMove{LinearTo: toPoint(pos)})
		}
	}
	return nil
}

func writePreview(w io.Writer, title string, tp *toolpath, st *processors.Stats) error {
	cfg := previewConfig{
		MinPos: *toPoint(st.Min()),
		MaxPos: *toPoint(st.Max()),
	}

	jsTitle, err := json.Marshal(title)
	if err != nil {
		return err
	}
	jsConfig, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	jsMoves, err := json.Marshal(tp.moves)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, previewHTML, jsTitle, jsConfig, jsMoves)
	return err
}

const previewHTML = `<!DOCTYPE html>
<html>
  <head>
    <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
    <style type="text/css">
      canvas { border: 1px solid black; }
    </style>
    <script src="https://unpkg.com/zdog@1/dist/zdog.dist.js"></script>
  </head>
  <body>
    <canvas class="toolpath" width="600" height="600"></canvas>
    <script type="text/javascript">
document.title = %s;
const config = %s;
const moves = %s;
    </script>
    <script type="text/javascript">
const displaySize = 600;
const minPos = config.minPos;
const maxPos = config.maxPos;
const size = {
  x: Math.max(maxPos.x - minPos.x, 1),
  y: Math.max(maxPos.y - minPos.y, 1),
  z: Math.max(maxPos.z - minPos.z, 1),
};

const canvas = document.querySelector(".toolpath");
const illo = new Zdog.Illustration({
  element: canvas,
  scale: {x: 1.0, y: -1.0, z: 1.0},
  rotate: {x: 1.1, y: 0, z: -0.3},
  zoom: displaySize / 2 / Math.max(size.x, size.y, size.z),
});

canvas.onwheel = function(event) {
  illo.zoom = Math.max(illo.zoom * (1 - event.deltaY * 0.001), 0.01);
  animate();
};

let dragStartRX, dragStartRZ;
let isDragging = false;

new Zdog.Dragger({
  startElement: canvas,
  onDragStart: function() {
    dragStartRX = illo.rotate.x;
    dragStartRZ = illo.rotate.z;
    isDragging = true;
    animate();
  },
  onDragMove: function(pointer, moveX, moveY) {
    illo.rotate.x = dragStartRX - (moveY / displaySize * Zdog.TAU);
    illo.rotate.z = dragStartRZ - (moveX / displaySize * Zdog.TAU);
  },
  onDragEnd: function() {
    isDragging = false;
  },
});

// Center the bounds of the program.
const workspace = new Zdog.Anchor({
  addTo: illo,
  translate: {
    x: -(minPos.x + size.x / 2),
    y: -(minPos.y + size.y / 2),
    z: -(minPos.z + size.z / 2),
  },
});

const lo = minPos;
const hi = {x: lo.x + size.x, y: lo.y + size.y, z: lo.z + size.z};
new Zdog.Shape({
  addTo: workspace,
  stroke: size.x / 1000,
  color: 'grey',
  path: [
    {x: lo.x, y: lo.y, z: hi.z},
    {x: hi.x, y: lo.y, z: hi.z},
    {x: hi.x, y: hi.y, z: hi.z},
    {x: lo.x, y: hi.y, z: hi.z},
    {x: lo.x, y: lo.y, z: hi.z},

    {move: {x: lo.x, y: lo.y, z: lo.z}},
    {x: hi.x, y: lo.y, z: lo.z},
    {x: hi.x, y: hi.y, z: lo.z},
    {x: lo.x, y: hi.y, z: lo.z},
    {x: lo.x, y: lo.y, z: lo.z},

    {move: {x: lo.x, y: lo.y, z: hi.z}},
    {x: lo.x, y: lo.y, z: lo.z},
    {move: {x: hi.x, y: lo.y, z: hi.z}},
    {x: hi.x, y: lo.y, z: lo.z},
    {move: {x: hi.x, y: hi.y, z: hi.z}},
    {x: hi.x, y: hi.y, z: lo.z},
    {move: {x: lo.x, y: hi.y, z: hi.z}},
    {x: lo.x, y: hi.y, z: lo.z},
  ],
});

const axis = Math.max(size.x, size.y, size.z) / 10;
for (const [color, end] of [
  ['red', {x: axis, y: 0, z: 0}],
  ['green', {x: 0, y: axis, z: 0}],
  ['blue', {x: 0, y: 0, z: axis}],
]) {
  new Zdog.Shape({
    addTo: workspace,
    stroke: axis / 10,
    color: color,
    path: [{x: 0, y: 0, z: 0}, end],
  });
}

let curPt = config.homePos;
function moveTo(pt, color) {
  new Zdog.Shape({
    addTo: workspace,
    stroke: axis / 50,
    color: color,
    path: [curPt, pt],
  });
  curPt = pt;
}

for (const move of moves) {
  if (move.rapidTo !== undefined) {
    moveTo(move.rapidTo, 'red');
  } else if (move.linearTo !== undefined) {
    moveTo(move.linearTo, 'green');
  }
}

function animate() {
  illo.updateRenderGraph();
  if (isDragging) {
    requestAnimationFrame(animate);
  }
}
animate();
    </script>
  </body>
</html>
`
