// Command xmastree renders a Christmas tree in falling snow. Drag with the left mouse button, or
// from a phone through the optional remote touch pad, to orbit the camera.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-xmas/common"
	"github.com/Carmen-Shannon/oxy-xmas/config"
	"github.com/Carmen-Shannon/oxy-xmas/engine"
	"github.com/Carmen-Shannon/oxy-xmas/engine/input"
	"github.com/Carmen-Shannon/oxy-xmas/engine/profiler"
	"github.com/Carmen-Shannon/oxy-xmas/engine/remote"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/wgpu_backend"
	"github.com/Carmen-Shannon/oxy-xmas/engine/scene"
	"github.com/Carmen-Shannon/oxy-xmas/engine/window"
	"github.com/Carmen-Shannon/oxy-xmas/xmas"
)

func main() {
	configPath := flag.String("config", "xmas.yaml", "path to the YAML settings file; a missing file means defaults")
	softwareRenderer := flag.Bool("software", false, "force the fallback software adapter")
	flag.Parse()

	if err := run(*configPath, *softwareRenderer); err != nil {
		fmt.Fprintln(os.Stderr, "xmastree:", err)
		os.Exit(1)
	}
}

func run(configPath string, softwareRenderer bool) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level, err := settings.SlogLevel()
	if err != nil {
		return err
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	log := common.ComponentLogger("engine")

	// ── Window ──────────────────────────────────────────────────────────
	win, err := window.NewWindow(
		window.WithTitle(settings.Window.Title),
		window.WithWidth(settings.Window.Width),
		window.WithHeight(settings.Window.Height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	// ── Renderer ────────────────────────────────────────────────────────
	msaa := renderer.MSAA4x
	if settings.Window.MSAA == 1 {
		msaa = renderer.MSAAOff
	}
	backend, err := wgpu_backend.NewWGPURendererBackend(win.SurfaceDescriptor(),
		wgpu_backend.WithMSAA(msaa),
		wgpu_backend.WithForceSoftwareRenderer(softwareRenderer),
	)
	if err != nil {
		return err
	}
	presentMode := renderer.PresentModeUncapped
	if settings.Window.VSync {
		presentMode = renderer.PresentModeVSync
	}
	r := renderer.NewRenderer(backend,
		renderer.WithPresentMode(presentMode),
		renderer.WithSurfaceSize(win.Width(), win.Height()),
	)
	defer r.Release()

	// ── Scene ───────────────────────────────────────────────────────────
	sc, err := scene.NewScene("xmas", r, xmas.SceneOptions(settings)...)
	if err != nil {
		return err
	}
	defer sc.Release()
	if err := xmas.Build(sc, settings); err != nil {
		return err
	}

	// ── Engine ──────────────────────────────────────────────────────────
	queue := input.NewQueue()
	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithInputQueue(queue),
		engine.WithScene(0, sc),
		engine.WithProfiling(settings.Profiler.Enabled),
		engine.WithProfiler(profiler.NewProfiler(profiler.WithInterval(settings.Profiler.Interval))),
		engine.WithRenderFrameLimit(float64(settings.FrameCap)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		eng.Quit()
	}()

	// ── Remote touch pad ────────────────────────────────────────────────
	if settings.Remote.Enabled {
		srv := remote.NewServer(queue, remote.WithDefaultViewport(settings.Window.Width, settings.Window.Height))
		go func() {
			if err := srv.ListenAndServe(ctx, settings.Remote.Addr); err != nil {
				log.Error("remote input server stopped", "error", err)
			}
		}()
	}

	eng.Run()
	return nil
}
