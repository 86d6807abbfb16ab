package main

import (
	"math"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// demoScene fills the store with axes, a ring of translucent panes, a point cloud and a few
// draggable handles.
func demoScene(s scene.Store) error {
	axes := [3]common.Colour{{1, 0, 0, 1}, {0, 1, 0, 1}, {0, 0.4, 1, 1}}
	for i, c := range axes {
		var end mgl64.Vec3
		end[i] = 4
		s.AddLine(scene.World(), scene.Line{Ends: [2]mgl64.Vec3{{}, end}, Colours: [2]common.Colour{c, c}, Width: 2})
	}

	const panes = 12
	for i := range panes {
		a := 2 * math.Pi * float64(i) / panes
		c, sn := math.Cos(a), math.Sin(a)
		centre := mgl64.Vec3{3 * c, 0, 3 * sn}
		tangent := mgl64.Vec3{-sn, 0, c}.Mul(0.6)
		up := mgl64.Vec3{0, 0.8, 0}
		err := s.AddPolygon(scene.World(), scene.Polygon{
			Vertices: []mgl64.Vec3{
				centre.Sub(tangent).Sub(up),
				centre.Add(tangent).Sub(up),
				centre.Add(tangent).Add(up),
				centre.Sub(tangent).Add(up),
			},
			Colours: []common.Colour{{float32(c*0.5 + 0.5), 0.6, float32(sn*0.5 + 0.5), 0.4}},
			Blend:   common.BlendAlpha,
		})
		if err != nil {
			return err
		}
	}

	for i := range 500 {
		t := float64(i) * 0.05
		s.AddPoint(scene.World(), scene.Point{
			Position: mgl64.Vec3{math.Cos(t) * t / 10, t/10 - 1.5, math.Sin(t) * t / 10},
			Colour:   common.Colour{1, 1, 1, 1},
			Size:     2,
		})
	}

	for i := range 3 {
		s.AddHandle(scene.World(), scene.Handle{
			Position:       mgl64.Vec3{float64(i) - 1, 1.5, 0},
			Size:           0.15,
			Colour:         common.Colour{1, 0.8, 0.2, 0.9},
			SelectedColour: common.Colour{1, 0.2, 0.2, 1},
		})
	}
	s.AddHandle(scene.Screen(0), scene.Handle{
		Position:       mgl64.Vec3{0.1, 0.9, 0.1},
		Size:           0.05,
		Colour:         common.Colour{0.2, 1, 0.4, 0.9},
		SelectedColour: common.Colour{1, 0.2, 0.2, 1},
	})
	return nil
}
