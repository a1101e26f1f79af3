// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/photon"
)

// stubDevice satisfies photon.Device and remembers its config.
type stubDevice struct {
	photon.Device
	name string
	cfg  Config
}

func stubFactory(name string) Factory {
	return func(cfg Config) (photon.Device, error) {
		return &stubDevice{name: name, cfg: cfg}, nil
	}
}

func failingFactory(cfg Config) (photon.Device, error) {
	return nil, errors.New("adapter lost")
}

func never() bool { return false }

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	r.Register("test", 50, stubFactory("test"), nil)

	e, ok := r.Get("test")
	if !ok {
		t.Fatal("registered backend not found")
	}
	if e.Name != "test" || e.Priority != 50 {
		t.Errorf("entry = %+v", e)
	}
	if !e.Available() {
		t.Error("nil Available should mean always available")
	}

	r.Unregister("test")
	if _, ok := r.Get("test"); ok {
		t.Error("backend still present after Unregister")
	}
}

func TestRegistryOrdering(t *testing.T) {
	r := NewRegistry()
	r.Register("software", 10, stubFactory("software"), nil)
	r.Register("wgpu", 100, stubFactory("wgpu"), never)
	r.Register("ebiten", 50, stubFactory("ebiten"), nil)
	r.Register("alt", 50, stubFactory("alt"), nil)

	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{"list", r.List(), []string{"wgpu", "alt", "ebiten", "software"}},
		{"available", r.Available(), []string{"alt", "ebiten", "software"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !slices.Equal(tt.got, tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestRegistryOpen(t *testing.T) {
	r := NewRegistry()
	r.Register("software", 10, stubFactory("software"), nil)
	r.Register("wgpu", 100, stubFactory("wgpu"), never)
	r.Register("broken", 20, failingFactory, nil)

	dev, err := r.Open("software", Config{Width: 320, Height: 200})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s := dev.(*stubDevice); s.cfg.Width != 320 || s.cfg.Height != 200 {
		t.Errorf("config not passed through: %+v", s.cfg)
	}

	var nf *NotFoundError
	if _, err := r.Open("metal", Config{}); !errors.As(err, &nf) || nf.Name != "metal" {
		t.Errorf("Open(metal) err = %v, want NotFoundError", err)
	}
	var ua *UnavailableError
	if _, err := r.Open("wgpu", Config{}); !errors.As(err, &ua) {
		t.Errorf("Open(wgpu) err = %v, want UnavailableError", err)
	}
	if _, err := r.Open("broken", Config{}); err == nil {
		t.Error("Open(broken) succeeded")
	}
}

func TestRegistryOpenBestFallsBack(t *testing.T) {
	r := NewRegistry()
	if _, err := r.OpenBest(Config{}); !errors.Is(err, ErrNoBackendAvailable) {
		t.Errorf("empty registry err = %v", err)
	}

	r.Register("broken", 100, failingFactory, nil)
	r.Register("software", 10, stubFactory("software"), nil)
	dev, err := r.OpenBest(Config{})
	if err != nil {
		t.Fatalf("OpenBest: %v", err)
	}
	if dev.(*stubDevice).name != "software" {
		t.Errorf("OpenBest picked %q", dev.(*stubDevice).name)
	}

	r.Unregister("software")
	if _, err := r.OpenBest(Config{}); err == nil {
		t.Error("OpenBest with only a failing backend succeeded")
	}
}
