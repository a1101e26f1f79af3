// Command photondemo renders a few sprites and a line of text with photon.
//
// With a display it opens a window through the best available backend.
// With -headless it renders a fixed number of frames offscreen and writes
// the last one to a PNG file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/photon"
	"github.com/gogpu/photon/backend"
	ebitenbackend "github.com/gogpu/photon/backend/ebiten"
	_ "github.com/gogpu/photon/backend/soft"
	_ "github.com/gogpu/photon/backend/wgpu"
	"github.com/gogpu/photon/font"
	"github.com/gogpu/photon/internal/imageio"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		cfgPath  = flag.String("config", "", "TOML or YAML config file")
		backName = flag.String("backend", "", "backend override: auto, wgpu, ebiten or software")
		headless = flag.Bool("headless", false, "render offscreen and write a PNG")
		output   = flag.String("output", "", "PNG path override for -headless")
	)
	flag.Parse()

	if *cfgPath == "" {
		*cfgPath = os.Getenv("PHOTON_CONFIG")
	}
	cfg, err := Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *backName != "" {
		cfg.Render.Backend = *backName
	}
	if *output != "" {
		cfg.Output.PNG = *output
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	photon.SetLogger(slogFor(log))

	dev, err := openDevice(cfg, *headless)
	if err != nil {
		return err
	}
	defer dev.Destroy()

	var win photon.Window = photon.FixedAspect(float32(cfg.Window.Width) / float32(cfg.Window.Height))
	if w, ok := dev.(photon.Window); ok {
		win = w
	}

	r, err := photon.NewRenderer2D(dev, win,
		photon.WithBatchCapacity(cfg.Render.BatchCapacity),
		photon.WithClearColor(photon.Hex(cfg.Render.ClearColor)),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	defer r.Shutdown()

	sc, err := newScene(r, win, cfg)
	if err != nil {
		return err
	}
	log.Info("scene ready",
		zap.Int("sprites", len(sc.sprites)),
		zap.Int("glyphs", len(sc.text.Sprites())),
		zap.Int("batches", len(r.Batches())),
		zap.String("font", sc.font.Name()),
	)

	if ed, ok := dev.(*ebitenbackend.Device); ok && !*headless {
		return ebitenbackend.Run(&ebitenbackend.Game{
			Device:    ed,
			Update:    func() error { return sc.tick(log) },
			Render:    r.RenderFrame,
			TPS:       cfg.Window.TPS,
			FixedSize: !cfg.Window.Resizable,
		}, cfg.Window.Title)
	}
	return renderOffscreen(r, dev, sc, cfg, log)
}

func openDevice(cfg *Config, headless bool) (photon.Device, error) {
	bc := backend.Config{Width: cfg.Window.Width, Height: cfg.Window.Height, Title: cfg.Window.Title}
	name := cfg.Render.Backend
	switch {
	case headless && (name == "auto" || name == "ebiten"):
		name = "software"
	case name == "auto" && slices.Contains(backend.Available(), "ebiten"):
		// A window needs the ebiten game loop.
		name = "ebiten"
	}
	if name == "auto" || name == "" {
		dev, err := backend.OpenBest(bc)
		if err != nil {
			return nil, fmt.Errorf("open backend: %w", err)
		}
		return dev, nil
	}
	dev, err := backend.Open(name, bc)
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}
	return dev, nil
}

func renderOffscreen(r *photon.Renderer2D, dev photon.Device, sc *scene, cfg *Config, log *zap.Logger) error {
	start := time.Now()
	for range cfg.Output.Frames {
		if err := sc.tick(log); err != nil {
			return err
		}
		if err := r.RenderFrame(); err != nil {
			return fmt.Errorf("render frame: %w", err)
		}
	}
	elapsed := time.Since(start)
	st := r.Stats()
	log.Info("frames rendered",
		zap.Int("frames", cfg.Output.Frames),
		zap.Duration("elapsed", elapsed),
		zap.Int("draw_calls", st.DrawCalls),
		zap.Int("sprites", st.Sprites),
	)

	if cfg.Output.PNG == "" {
		return nil
	}
	img, err := snapshot(dev)
	if err != nil {
		return err
	}
	if err := imageio.SavePNG(cfg.Output.PNG, img); err != nil {
		return fmt.Errorf("save %s: %w", cfg.Output.PNG, err)
	}
	log.Info("snapshot written", zap.String("path", cfg.Output.PNG))
	return nil
}

// snapshot reads the last frame back from devices that support it.
func snapshot(dev photon.Device) (*image.RGBA, error) {
	switch d := dev.(type) {
	case interface{ Image() *image.RGBA }:
		return d.Image(), nil
	case interface{ Image() (*image.RGBA, error) }:
		img, err := d.Image()
		if err != nil {
			return nil, fmt.Errorf("read back frame: %w", err)
		}
		return img, nil
	}
	return nil, errors.New("backend cannot read back frames")
}

// scene is the demo content: configured sprites, some of which bounce
// across the screen, and one line of text.
type scene struct {
	win     photon.Window
	font    *font.Font
	text    *photon.Text
	sprites []*photon.Sprite
	bounce  []float32 // horizontal velocity per sprite, 0 for static ones

	frames    int
	lastFPS   time.Time
	fpsFrames int
}

func newScene(r *photon.Renderer2D, win photon.Window, cfg *Config) (*scene, error) {
	sc := &scene{win: win, lastFPS: time.Now()}

	var err error
	fontOpts := []font.Option{
		font.WithPixelHeight(cfg.Font.PixelHeight),
		font.WithAtlasSize(cfg.Font.AtlasSize),
	}
	if cfg.Font.Path != "" {
		sc.font, err = font.Load(r, cfg.Font.Path, fontOpts...)
	} else {
		sc.font, err = font.New(r, goregular.TTF, fontOpts...)
	}
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}

	for i, sp := range cfg.Demo.Sprites {
		tex, err := spriteTexture(r, sp)
		if err != nil {
			return nil, fmt.Errorf("sprite %d: %w", i, err)
		}
		s := photon.NewSprite(photon.V2(sp.X, sp.Y), photon.V2(sp.Width, sp.Height), tex)
		s.SetColor(photon.Hex(sp.Color))
		if err := r.AddSprite(s); err != nil {
			return nil, fmt.Errorf("sprite %d: %w", i, err)
		}
		sc.sprites = append(sc.sprites, s)
		var v float32
		if sp.Bounce {
			v = 0.5
		}
		sc.bounce = append(sc.bounce, v)
	}

	sc.text = photon.NewText(sc.font, cfg.Demo.Text, photon.V2(cfg.Demo.X, cfg.Demo.Y), cfg.Demo.Size, cfg.Demo.Spacing)
	if err := r.AddText(sc.text); err != nil {
		return nil, fmt.Errorf("add text: %w", err)
	}
	return sc, nil
}

func spriteTexture(r *photon.Renderer2D, sp SpriteConfig) (photon.Texture, error) {
	if sp.Texture != "" {
		return r.LoadTexture(sp.Texture, sp.layout)
	}
	const n = 8
	pix := make([]byte, n*n*4)
	for y := range n {
		for x := range n {
			v := byte(255)
			if (x+y)%2 == 1 {
				v = 96
			}
			i := (y*n + x) * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, 255
		}
	}
	return r.NewTexture(pix, n, n, photon.LayoutRGBA)
}

// tick advances the bouncing sprites and logs the frame rate once a
// second.
func (sc *scene) tick(log *zap.Logger) error {
	worldW := float32(photon.WorldHeight)
	if a := sc.win.AspectRatio(); a > 1 {
		worldW *= a
	}
	for i, s := range sc.sprites {
		v := sc.bounce[i]
		if v == 0 {
			continue
		}
		p := s.Position()
		p.X += v
		if p.X < 0 || p.X+s.Size().X > worldW {
			sc.bounce[i] = -v
			p.X = min(max(p.X, 0), worldW-s.Size().X)
		}
		s.SetPosition(p)
		if err := s.Update(); err != nil {
			return fmt.Errorf("update sprite %d: %w", i, err)
		}
	}

	sc.frames++
	sc.fpsFrames++
	if now := time.Now(); now.Sub(sc.lastFPS) >= time.Second {
		fps := float64(sc.fpsFrames) / now.Sub(sc.lastFPS).Seconds()
		log.Info("fps", zap.Float64("fps", fps), zap.Int("frames", sc.frames))
		sc.lastFPS, sc.fpsFrames = now, 0
	}
	return nil
}
