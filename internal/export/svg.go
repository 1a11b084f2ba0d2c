// Package export renders solved trajectories to SVG for reports.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/trajopt/internal/dynamo"
)

type Point struct {
	X, Y float64
}

// StateSeries extracts one state component against time from a trajectory.
func StateSeries(tr *dynamo.Trajectory, idx int) []Point {
	if tr == nil || idx < 0 {
		return nil
	}
	pts := make([]Point, 0, len(tr.States))
	for i, x := range tr.States {
		if idx >= len(x) {
			return nil
		}
		pts = append(pts, Point{X: tr.Times[i], Y: x[idx]})
	}
	return pts
}

// ControlSeries extracts one control component against time.
func ControlSeries(tr *dynamo.Trajectory, idx int) []Point {
	if tr == nil || idx < 0 {
		return nil
	}
	pts := make([]Point, 0, len(tr.Controls))
	for i, u := range tr.Controls {
		if idx >= len(u) {
			return nil
		}
		pts = append(pts, Point{X: tr.Times[i], Y: u[idx]})
	}
	return pts
}

// TrajectoryToSVG renders a polyline of points as a standalone SVG document.
func TrajectoryToSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// WriteSVG renders points and writes the document to path.
func WriteSVG(path string, points []Point, width, height int, strokeColor string) error {
	doc := TrajectoryToSVG(points, width, height, strokeColor)
	if doc == "" {
		return fmt.Errorf("export: need at least two points")
	}
	return os.WriteFile(path, []byte(doc), 0644)
}
