// Package highlight fills the numeric cells of a worksheet that exceed a
// threshold.
package highlight

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"sheetops/grid"
	"sheetops/host"
	"sheetops/summary"
)

const (
	DefaultThreshold = 100
	DefaultColor     = "yellow"
)

var namedColors = map[string]string{
	"yellow": "#FFFF00",
	"red":    "#FF0000",
	"green":  "#00FF00",
	"blue":   "#0000FF",
	"orange": "#FFA500",
	"pink":   "#FFC0CB",
	"purple": "#800080",
	"gray":   "#808080",
	"grey":   "#808080",
	"white":  "#FFFFFF",
	"black":  "#000000",
}

var hexColor = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)

// ResolveColor maps a color name or hex code to "#RRGGBB".
func ResolveColor(c string) (string, error) {
	c = strings.TrimSpace(c)
	if hex, ok := namedColors[strings.ToLower(c)]; ok {
		return hex, nil
	}
	if hexColor.MatchString(c) {
		return "#" + strings.ToUpper(strings.TrimPrefix(c, "#")), nil
	}
	return "", fmt.Errorf("unknown color %q", c)
}

// Result reports one highlight pass.
type Result struct {
	Sheet       string
	Threshold   float64
	Color       string
	Highlighted []string
}

// Summary renders the result for operators.
func (r *Result) Summary() *summary.Summary {
	return summary.New("Highlight complete").
		Add("Sheet", r.Sheet).
		Add("Threshold", r.Threshold).
		Add("Color", r.Color).
		Add("Cells highlighted", len(r.Highlighted))
}

// Run fills every numeric cell of s greater than threshold with color.
// Text, booleans and blanks are never highlighted.
func Run(s host.Sheet, threshold float64, color string, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fill, err := ResolveColor(color)
	if err != nil {
		return nil, err
	}
	res := &Result{Sheet: s.Name(), Threshold: threshold, Color: fill}

	r, err := s.UsedRange()
	if err != nil {
		return nil, fmt.Errorf("used range of %q: %w", s.Name(), err)
	}
	if r.Empty() {
		logger.Info("no data found", zap.String("sheet", s.Name()))
		return res, nil
	}
	values, err := s.ReadGrid(r)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", s.Name(), err)
	}
	for i, row := range values {
		for j, v := range row {
			n, ok := grid.Number(v)
			if !ok || n <= threshold {
				continue
			}
			cell := grid.CellAt(r.Row+i, r.Col+j)
			if err := s.SetFormat(cell, host.Format{FillColor: fill}); err != nil {
				return res, fmt.Errorf("format %s: %w", cell.A1(), err)
			}
			res.Highlighted = append(res.Highlighted, cell.A1())
		}
	}
	logger.Info("highlighted cells",
		zap.String("sheet", s.Name()),
		zap.Float64("threshold", threshold),
		zap.Int("cells", len(res.Highlighted)),
	)
	return res, nil
}
