// Command tvgrender renders TVG files, raster images and YAML scene
// descriptions to PNG, or converts YAML scenes to TVG.
//
// Usage:
//
//	tvgrender [flags] input.{tvg,yaml,png,...}
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/tvg"
	"github.com/gogpu/tvg/internal/codec"
	"github.com/gogpu/tvg/internal/image"
)

const defaultSize = 512

func main() {
	var (
		width   = flag.Int("width", 0, "image width (default: from the input)")
		height  = flag.Int("height", 0, "image height (default: from the input)")
		output  = flag.String("output", "", "output file (default: input name with .png or .tvg)")
		threads = flag.Int("threads", -1, "prepare workers, 0 renders synchronously (default: CPUs-1)")
		toTVG   = flag.Bool("tvg", false, "write a .tvg file instead of rendering")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: tvgrender [flags] input")
		flag.PrintDefaults()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	tvg.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	input := flag.Arg(0)
	in, err := open(input)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", input, err)
	}

	ext := ".png"
	if *toTVG {
		ext = ".tvg"
	}
	out := *output
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + ext
	}

	if *toTVG {
		var s tvg.Saver
		if err := s.Save(in.root, out); err != nil {
			log.Fatalf("Failed to save: %v", err)
		}
		if err := s.Sync(); err != nil {
			log.Fatalf("Failed to save: %v", err)
		}
		log.Printf("Scene saved to %s\n", out)
		return
	}

	w, h := in.size(*width, *height)
	var opts []tvg.Option
	if *threads >= 0 {
		opts = append(opts, tvg.WithThreads(*threads))
	}
	buf, err := render(in, w, h, opts...)
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
	if err := savePNG(out, buf, w, h); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Rendered %s to %s (%dx%d)\n", input, out, w, h)
}

// input is a loaded paint tree plus the size hints of its source.
type input struct {
	root       *tvg.Scene
	w, h       int
	background string
}

func open(path string) (*input, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		sf, err := loadScene(path)
		if err != nil {
			return nil, err
		}
		root, err := sf.build()
		if err != nil {
			return nil, err
		}
		return &input{root: root, w: sf.Width, h: sf.Height, background: sf.Background}, nil
	default:
		pic := tvg.NewPicture()
		if err := pic.Load(path); err != nil {
			return nil, err
		}
		root := tvg.NewScene()
		if err := root.Push(pic); err != nil {
			return nil, err
		}
		return &input{root: root}, nil
	}
}

// size picks the output size: flags first, then the scene file, then the
// bounds of the content.
func (in *input) size(w, h int) (int, int) {
	if w <= 0 {
		w = in.w
	}
	if h <= 0 {
		h = in.h
	}
	if w > 0 && h > 0 {
		return w, h
	}
	bw, bh := defaultSize, defaultSize
	if x, y, cw, ch, err := in.root.Bounds(); err == nil {
		bw = max(int(math.Ceil(float64(x+cw))), 1)
		bh = max(int(math.Ceil(float64(y+ch))), 1)
	}
	if w <= 0 {
		w = bw
	}
	if h <= 0 {
		h = bh
	}
	return w, h
}

func render(in *input, w, h int, opts ...tvg.Option) ([]uint32, error) {
	c := tvg.NewCanvas(opts...)
	defer c.Close()

	buf := make([]uint32, w*h)
	if err := c.SetTarget(buf, w, w, h, tvg.ARGB8888); err != nil {
		return nil, err
	}
	if in.background != "" {
		r, g, b, a, err := parseColor(in.background)
		if err != nil {
			return nil, err
		}
		bg := tvg.NewShape()
		bg.AppendRect(0, 0, float32(w), float32(h), 0, 0)
		bg.SetFillColor(r, g, b, a)
		if err := c.Push(bg); err != nil {
			return nil, err
		}
	}
	if err := c.Push(in.root); err != nil {
		return nil, err
	}
	if err := c.Update(); err != nil {
		return nil, err
	}
	if err := c.Draw(true); err != nil {
		_ = c.Sync()
		return nil, err
	}
	if err := c.Sync(); err != nil {
		return nil, err
	}
	return buf, nil
}

func savePNG(path string, buf []uint32, w, h int) error {
	img, err := image.Wrap(buf, w, h, w, image.ARGB, true)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := codec.EncodePNG(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
