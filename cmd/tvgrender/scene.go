package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/tvg"
)

// sceneFile is a YAML scene description.
type sceneFile struct {
	Width      int         `yaml:"width,omitempty"`
	Height     int         `yaml:"height,omitempty"`
	Background string      `yaml:"background,omitempty"`
	Paints     []paintSpec `yaml:"paints"`
}

// paintSpec describes one paint. Kind selects which fields apply.
type paintSpec struct {
	Kind string `yaml:"kind"` // rect, circle, path, scene, picture, text
	ID   string `yaml:"id,omitempty"`

	X      float32 `yaml:"x,omitempty"`
	Y      float32 `yaml:"y,omitempty"`
	W      float32 `yaml:"w,omitempty"`
	H      float32 `yaml:"h,omitempty"`
	RX     float32 `yaml:"rx,omitempty"`
	RY     float32 `yaml:"ry,omitempty"`
	Radius float32 `yaml:"radius,omitempty"`
	Path   string  `yaml:"path,omitempty"`

	Fill     string        `yaml:"fill,omitempty"`
	FillRule string        `yaml:"fillRule,omitempty"`
	Gradient *gradientSpec `yaml:"gradient,omitempty"`
	Stroke   *strokeSpec   `yaml:"stroke,omitempty"`
	Trim     []float32     `yaml:"trim,omitempty"`

	Opacity   *uint8    `yaml:"opacity,omitempty"`
	Translate []float32 `yaml:"translate,omitempty"`
	Rotate    float32   `yaml:"rotate,omitempty"`
	Scale     float32   `yaml:"scale,omitempty"`
	Blend     string    `yaml:"blend,omitempty"`
	Mask      *maskSpec `yaml:"mask,omitempty"`

	Children []paintSpec  `yaml:"children,omitempty"`
	Effects  []effectSpec `yaml:"effects,omitempty"`

	Source string    `yaml:"source,omitempty"`
	Size   []float32 `yaml:"size,omitempty"`

	Text     string  `yaml:"text,omitempty"`
	Font     string  `yaml:"font,omitempty"`
	FontSize float32 `yaml:"fontSize,omitempty"`
	Style    string  `yaml:"style,omitempty"`
}

type gradientSpec struct {
	Linear []float32  `yaml:"linear,omitempty"` // x1 y1 x2 y2
	Radial []float32  `yaml:"radial,omitempty"` // cx cy r
	Stops  []stopSpec `yaml:"stops"`
	Spread string     `yaml:"spread,omitempty"`
}

type stopSpec struct {
	Offset float32 `yaml:"offset"`
	Color  string  `yaml:"color"`
}

type strokeSpec struct {
	Width    float32       `yaml:"width"`
	Color    string        `yaml:"color,omitempty"`
	Gradient *gradientSpec `yaml:"gradient,omitempty"`
	Cap      string        `yaml:"cap,omitempty"`
	Join     string        `yaml:"join,omitempty"`
	Miter    float32       `yaml:"miter,omitempty"`
	Dash     []float32     `yaml:"dash,omitempty"`
	Offset   float32       `yaml:"dashOffset,omitempty"`
	First    bool          `yaml:"first,omitempty"`
}

type effectSpec struct {
	Kind      string   `yaml:"kind"` // blur, shadow, fill, tint, tritone
	Sigma     float32  `yaml:"sigma,omitempty"`
	Direction string   `yaml:"direction,omitempty"`
	Border    string   `yaml:"border,omitempty"`
	Angle     float32  `yaml:"angle,omitempty"`
	Distance  float32  `yaml:"distance,omitempty"`
	Intensity float32  `yaml:"intensity,omitempty"`
	Quality   uint8    `yaml:"quality,omitempty"`
	Colors    []string `yaml:"colors,omitempty"`
}

type maskSpec struct {
	Method string    `yaml:"method"`
	Paint  paintSpec `yaml:"paint"`
}

// loadScene reads and parses a YAML scene file.
func loadScene(path string) (*sceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}
	return parseScene(data)
}

func parseScene(data []byte) (*sceneFile, error) {
	var sf sceneFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	if len(sf.Paints) == 0 {
		return nil, errors.New("scene has no paints")
	}
	return &sf, nil
}

// build turns the description into a scene holding every paint.
func (sf *sceneFile) build() (*tvg.Scene, error) {
	root := tvg.NewScene()
	for i := range sf.Paints {
		p, err := buildPaint(&sf.Paints[i])
		if err != nil {
			return nil, fmt.Errorf("paint %d: %w", i, err)
		}
		if err := root.Push(p); err != nil {
			return nil, fmt.Errorf("paint %d: %w", i, err)
		}
	}
	return root, nil
}

func buildPaint(ps *paintSpec) (tvg.Paint, error) {
	var p tvg.Paint
	switch strings.ToLower(ps.Kind) {
	case "rect", "circle", "path":
		s, err := buildShape(ps)
		if err != nil {
			return nil, err
		}
		p = s
	case "scene":
		sc := tvg.NewScene()
		for i := range ps.Children {
			ch, err := buildPaint(&ps.Children[i])
			if err != nil {
				return nil, fmt.Errorf("child %d: %w", i, err)
			}
			if err := sc.Push(ch); err != nil {
				return nil, err
			}
		}
		for i := range ps.Effects {
			e, err := buildEffect(&ps.Effects[i])
			if err != nil {
				return nil, fmt.Errorf("effect %d: %w", i, err)
			}
			if err := sc.PushEffect(e); err != nil {
				return nil, fmt.Errorf("effect %d: %w", i, err)
			}
		}
		p = sc
	case "picture":
		pic := tvg.NewPicture()
		if err := pic.Load(ps.Source); err != nil {
			return nil, err
		}
		if len(ps.Size) == 2 {
			if err := pic.SetSize(ps.Size[0], ps.Size[1]); err != nil {
				return nil, err
			}
		}
		p = pic
	case "text":
		t, err := buildText(ps)
		if err != nil {
			return nil, err
		}
		p = t
	default:
		return nil, fmt.Errorf("unknown paint kind %q", ps.Kind)
	}
	if err := applyCommon(p, ps); err != nil {
		return nil, err
	}
	return p, nil
}

func buildShape(ps *paintSpec) (*tvg.Shape, error) {
	s := tvg.NewShape()
	switch strings.ToLower(ps.Kind) {
	case "rect":
		s.AppendRect(ps.X, ps.Y, ps.W, ps.H, ps.RX, ps.RY)
	case "circle":
		rx, ry := ps.Radius, ps.Radius
		if ps.RX > 0 || ps.RY > 0 {
			rx, ry = ps.RX, ps.RY
		}
		s.AppendCircle(ps.X, ps.Y, rx, ry)
	case "path":
		cmds, pts, err := parsePath(ps.Path)
		if err != nil {
			return nil, err
		}
		if err := s.AppendPath(cmds, pts); err != nil {
			return nil, err
		}
	}
	if ps.Fill != "" {
		r, g, b, a, err := parseColor(ps.Fill)
		if err != nil {
			return nil, err
		}
		s.SetFillColor(r, g, b, a)
	}
	if ps.Gradient != nil {
		f, err := buildGradient(ps.Gradient)
		if err != nil {
			return nil, err
		}
		s.SetFill(f)
	}
	if strings.EqualFold(ps.FillRule, "evenodd") {
		if err := s.SetFillRule(tvg.EvenOdd); err != nil {
			return nil, err
		}
	}
	if len(ps.Trim) == 2 {
		if err := s.SetTrimPath(ps.Trim[0], ps.Trim[1], false); err != nil {
			return nil, err
		}
	}
	if ps.Stroke != nil {
		if err := applyStroke(s, ps.Stroke); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func applyStroke(s *tvg.Shape, st *strokeSpec) error {
	if err := s.SetStrokeWidth(st.Width); err != nil {
		return err
	}
	if st.Color != "" {
		r, g, b, a, err := parseColor(st.Color)
		if err != nil {
			return err
		}
		s.SetStrokeColor(r, g, b, a)
	}
	if st.Gradient != nil {
		f, err := buildGradient(st.Gradient)
		if err != nil {
			return err
		}
		s.SetStrokeFill(f)
	}
	if st.Cap != "" {
		c, err := lookup[tvg.StrokeCap]("cap", st.Cap, 3)
		if err != nil {
			return err
		}
		if err := s.SetStrokeCap(c); err != nil {
			return err
		}
	}
	if st.Join != "" {
		j, err := lookup[tvg.StrokeJoin]("join", st.Join, 3)
		if err != nil {
			return err
		}
		if err := s.SetStrokeJoin(j); err != nil {
			return err
		}
	}
	if st.Miter > 0 {
		if err := s.SetStrokeMiterlimit(st.Miter); err != nil {
			return err
		}
	}
	if len(st.Dash) > 0 {
		if err := s.SetStrokeDash(st.Dash, st.Offset); err != nil {
			return err
		}
	}
	s.SetOrder(st.First)
	return nil
}

func buildGradient(gs *gradientSpec) (tvg.Fill, error) {
	var f tvg.Fill
	switch {
	case len(gs.Linear) == 4:
		g := tvg.NewLinearGradient()
		if err := g.SetLinear(gs.Linear[0], gs.Linear[1], gs.Linear[2], gs.Linear[3]); err != nil {
			return nil, err
		}
		f = g
	case len(gs.Radial) == 3:
		g := tvg.NewRadialGradient()
		if err := g.SetRadial(gs.Radial[0], gs.Radial[1], gs.Radial[2]); err != nil {
			return nil, err
		}
		f = g
	default:
		return nil, errors.New("gradient needs linear [x1 y1 x2 y2] or radial [cx cy r]")
	}
	stops := make([]tvg.ColorStop, len(gs.Stops))
	for i, st := range gs.Stops {
		r, g, b, a, err := parseColor(st.Color)
		if err != nil {
			return nil, err
		}
		stops[i] = tvg.ColorStop{Offset: st.Offset, R: r, G: g, B: b, A: a}
	}
	if err := f.SetColorStops(stops); err != nil {
		return nil, err
	}
	if gs.Spread != "" {
		sp, err := lookup[tvg.Spread]("spread", gs.Spread, 3)
		if err != nil {
			return nil, err
		}
		if err := f.SetSpread(sp); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func buildText(ps *paintSpec) (*tvg.Text, error) {
	t := tvg.NewText()
	family, size := "Go", float32(12)
	if ps.Font != "" {
		family = ps.Font
	}
	if ps.FontSize > 0 {
		size = ps.FontSize
	}
	if err := t.SetFont(family, size, ps.Style); err != nil {
		return nil, err
	}
	t.SetText(ps.Text)
	if ps.Fill != "" {
		r, g, b, a, err := parseColor(ps.Fill)
		if err != nil {
			return nil, err
		}
		t.SetFillColor(r, g, b, a)
	}
	if ps.Gradient != nil {
		f, err := buildGradient(ps.Gradient)
		if err != nil {
			return nil, err
		}
		t.SetFill(f)
	}
	return t, nil
}

func applyCommon(p tvg.Paint, ps *paintSpec) error {
	if ps.ID != "" {
		p.SetID(tvg.ID(ps.ID))
	}
	if ps.Opacity != nil {
		p.SetOpacity(*ps.Opacity)
	}
	if ps.Scale != 0 {
		if err := p.Scale(ps.Scale); err != nil {
			return err
		}
	}
	if ps.Rotate != 0 {
		if err := p.Rotate(ps.Rotate); err != nil {
			return err
		}
	}
	if len(ps.Translate) == 2 {
		if err := p.Translate(ps.Translate[0], ps.Translate[1]); err != nil {
			return err
		}
	}
	if ps.Blend != "" {
		m, err := lookup[tvg.BlendMethod]("blend", ps.Blend, int(tvg.BlendSoftLight)+1)
		if err != nil {
			return err
		}
		if err := p.SetBlend(m); err != nil {
			return err
		}
	}
	if ps.Mask != nil {
		m, err := lookup[tvg.MaskMethod]("mask", ps.Mask.Method, int(tvg.MaskDarken)+1)
		if err != nil {
			return err
		}
		target, err := buildPaint(&ps.Mask.Paint)
		if err != nil {
			return fmt.Errorf("mask: %w", err)
		}
		if err := p.Mask(target, m); err != nil {
			return err
		}
	}
	return nil
}

func buildEffect(es *effectSpec) (tvg.Effect, error) {
	colors := make([][4]uint8, len(es.Colors))
	for i, c := range es.Colors {
		r, g, b, a, err := parseColor(c)
		if err != nil {
			return nil, err
		}
		colors[i] = [4]uint8{r, g, b, a}
	}
	need := func(n int) error {
		if len(colors) != n {
			return fmt.Errorf("%s effect takes %d colors, got %d", es.Kind, n, len(colors))
		}
		return nil
	}
	rgb := func(i int) tvg.RGB { return tvg.RGB{R: colors[i][0], G: colors[i][1], B: colors[i][2]} }

	switch strings.ToLower(es.Kind) {
	case "blur":
		e := tvg.GaussianBlur{Sigma: es.Sigma, Quality: es.Quality}
		if es.Direction != "" {
			d, err := lookup[tvg.BlurDirection]("direction", es.Direction, int(tvg.BlurVertical)+1)
			if err != nil {
				return nil, err
			}
			e.Direction = d
		}
		if es.Border != "" {
			b, err := lookup[tvg.BlurBorder]("border", es.Border, int(tvg.BorderWrap)+1)
			if err != nil {
				return nil, err
			}
			e.Border = b
		}
		return e, nil
	case "shadow":
		if err := need(1); err != nil {
			return nil, err
		}
		c := colors[0]
		return tvg.DropShadow{R: c[0], G: c[1], B: c[2], A: c[3], Angle: es.Angle, Distance: es.Distance, Sigma: es.Sigma, Quality: es.Quality}, nil
	case "fill":
		if err := need(1); err != nil {
			return nil, err
		}
		c := colors[0]
		return tvg.FillEffect{R: c[0], G: c[1], B: c[2], A: c[3]}, nil
	case "tint":
		if err := need(2); err != nil {
			return nil, err
		}
		return tvg.Tint{Black: rgb(0), White: rgb(1), Intensity: es.Intensity}, nil
	case "tritone":
		if err := need(3); err != nil {
			return nil, err
		}
		return tvg.Tritone{Shadow: rgb(0), Midtone: rgb(1), Highlight: rgb(2)}, nil
	}
	return nil, fmt.Errorf("unknown effect %q", es.Kind)
}

// lookup finds the enum value whose name matches, ignoring case.
func lookup[T interface {
	~uint8
	String() string
}](what, name string, n int) (T, error) {
	for i := range n {
		if v := T(i); strings.EqualFold(v.String(), name) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", what, name)
}

// parseColor accepts #rgb, #rrggbb and #rrggbbaa.
func parseColor(s string) (r, g, b, a uint8, err error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return 0, 0, 0, 0, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

// parsePath reads absolute M, L, C and Z commands separated by spaces or
// commas.
func parsePath(s string) ([]tvg.PathCommand, []tvg.Point, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\n' || r == '\t' })
	var (
		cmds []tvg.PathCommand
		pts  []tvg.Point
	)
	for i := 0; i < len(fields); {
		var cmd tvg.PathCommand
		var n int
		switch strings.ToUpper(fields[i]) {
		case "M":
			cmd, n = tvg.PathMoveTo, 1
		case "L":
			cmd, n = tvg.PathLineTo, 1
		case "C":
			cmd, n = tvg.PathCubicTo, 3
		case "Z":
			cmd = tvg.PathClose
		default:
			return nil, nil, fmt.Errorf("path: unknown command %q", fields[i])
		}
		i++
		if i+2*n > len(fields) {
			return nil, nil, fmt.Errorf("path: command %v needs %d points", cmd, n)
		}
		for range n {
			x, err := strconv.ParseFloat(fields[i], 32)
			if err != nil {
				return nil, nil, fmt.Errorf("path: %w", err)
			}
			y, err := strconv.ParseFloat(fields[i+1], 32)
			if err != nil {
				return nil, nil, fmt.Errorf("path: %w", err)
			}
			pts = append(pts, tvg.Point{X: float32(x), Y: float32(y)})
			i += 2
		}
		cmds = append(cmds, cmd)
	}
	return cmds, pts, nil
}
