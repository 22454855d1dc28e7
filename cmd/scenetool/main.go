// scenetool is a CLI utility for inspecting glTF scenes and testing ray picks
// against them.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/scenekit/internal/config"
	"github.com/Faultbox/scenekit/internal/engine/camera"
	"github.com/Faultbox/scenekit/internal/engine/material"
	"github.com/Faultbox/scenekit/internal/engine/picking"
	"github.com/Faultbox/scenekit/internal/engine/scene"
	"github.com/Faultbox/scenekit/internal/engine/texture"
	"github.com/Faultbox/scenekit/internal/logger"
)

func main() {
	flag.Usage = printUsage
	config.ParseFlags()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Sugar.Debugf("Config: %+v", cfg)

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "info":
		err = cmdInfo(os.Stdout, cfg, args)
	case "entries", "ls":
		err = cmdEntries(os.Stdout, cfg, args)
	case "textures", "tex":
		err = cmdTextures(os.Stdout, cfg, args)
	case "pick":
		err = cmdPick(os.Stdout, cfg, args)
	case "config":
		err = cmdConfig(os.Stdout, cfg, args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`scenetool - glTF scene inspection and picking utility

Usage:
  scenetool [flags] <command> [args]

Commands:
  info <scene.gltf>                 Show entry, material and texture counts
  entries <scene.gltf>              List flattened entries in traversal order
  textures [-decode] <scene.gltf>   List textures referenced by materials
  pick [-orbit-yaw deg] [-orbit-pitch deg] [-zoom f] <scene.gltf> <x> <y>
                                    Pick the surface under a screen pixel;
                                    the camera is fitted to the scene, then
                                    orbited and zoomed
  config [path]                     Write the effective config to path
                                    (default: user config directory)

Flags:
  -config <path>      Config file (default ./config.yaml or user config dir)
  -debug              Enable debug logging
  -width, -height     Viewport size used by pick
  -pick-mode <mode>   view (camera position through pixel) or unproject
  -flip-uvs           Flip V texture coordinates on import

Examples:
  scenetool info models/house.glb
  scenetool -width 800 -height 600 pick models/house.glb 400 300
  scenetool -pick-mode unproject pick models/house.glb 12 40
  scenetool pick -orbit-yaw 90 -zoom 0.5 models/house.glb 640 360`)
}

// usageError is returned for malformed command arguments.
type usageError string

const pickUsage = "pick [-orbit-yaw deg] [-orbit-pitch deg] [-zoom f] <scene.gltf> <x> <y>"

func (e usageError) Error() string { return "usage: scenetool " + string(e) }

func importScene(cfg *config.Config, path string) (*scene.Model, *material.Cache, error) {
	var cacheOpts []material.CacheOption
	if cfg.Import.UnicodePaths {
		cacheOpts = append(cacheOpts, material.WithUnicodeNormalization())
	}
	cache := material.NewCache(cacheOpts...)

	imp := scene.NewImporter(
		scene.WithCache(cache),
		scene.WithFlipUVs(cfg.Import.FlipUVs),
		scene.WithGenerateNormals(cfg.Import.GenerateNormals),
	)
	model, err := imp.Import(path)
	if err != nil {
		return nil, nil, err
	}
	return model, cache, nil
}

func cmdInfo(w io.Writer, cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return usageError("info <scene.gltf>")
	}

	model, cache, err := importScene(cfg, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Scene:     %s\n", model.Source())
	fmt.Fprintf(w, "Entries:   %d\n", model.Len())
	fmt.Fprintf(w, "Triangles: %d\n", model.TriangleCount())
	fmt.Fprintf(w, "Materials: %d\n", len(model.Materials()))
	fmt.Fprintf(w, "Textures:  %d\n", len(model.Textures()))

	if b := model.Bounds(); !b.IsEmpty() {
		fmt.Fprintf(w, "Bounds:    (%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)\n",
			b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	}

	hits, misses := cache.Stats()
	fmt.Fprintf(w, "Cache:     %d paths, %d hits, %d misses\n", cache.Len(), hits, misses)

	if diags := model.Diagnostics(); len(diags) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Warnings (%d):\n", len(diags))
		for _, d := range diags {
			fmt.Fprintf(w, "  %v\n", d)
		}
	}
	return nil
}

func cmdEntries(w io.Writer, cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return usageError("entries <scene.gltf>")
	}

	model, _, err := importScene(cfg, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%-4s %-32s %8s %8s  %-20s %s\n", "#", "NAME", "VERTS", "TRIS", "MATERIAL", "TRANSLATION")
	for i, e := range model.Entries() {
		t := e.Transform().Translation()
		fmt.Fprintf(w, "%-4d %-32s %8d %8d  %-20s (%.3f, %.3f, %.3f)\n",
			i, e.Name(), e.Geometry().VertexCount(), e.Geometry().TriangleCount(),
			e.Material().Name, t.X, t.Y, t.Z)
	}
	return nil
}

func cmdTextures(w io.Writer, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("textures", flag.ExitOnError)
	decode := fs.Bool("decode", false, "Decode pixels and report the average color")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return usageError("textures [-decode] <scene.gltf>")
	}

	_, cache, err := importScene(cfg, fs.Arg(0))
	if err != nil {
		return err
	}

	for _, tex := range cache.Textures() {
		fmt.Fprintf(w, "%-16s %-5s %5dx%-5d %s\n", tex.Role, tex.Format, tex.Width, tex.Height, tex.Path)
		if !*decode {
			continue
		}
		img, err := tex.Image()
		if err != nil {
			fmt.Fprintf(w, "  decode failed: %v\n", err)
			continue
		}
		r, g, b, a := averageColor(texture.ToRGBA(img).Pix)
		fmt.Fprintf(w, "  average rgba(%d, %d, %d, %d)\n", r, g, b, a)
	}
	return nil
}

func averageColor(pix []byte) (r, g, b, a uint8) {
	var sum [4]uint64
	for i := 0; i+3 < len(pix); i += 4 {
		for c := 0; c < 4; c++ {
			sum[c] += uint64(pix[i+c])
		}
	}
	n := uint64(len(pix) / 4)
	if n == 0 {
		return 0, 0, 0, 0
	}
	return uint8(sum[0] / n), uint8(sum[1] / n), uint8(sum[2] / n), uint8(sum[3] / n)
}

func cmdPick(w io.Writer, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("pick", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	orbitYaw := fs.Float64("orbit-yaw", 0, "Orbit the fitted camera around the scene (degrees)")
	orbitPitch := fs.Float64("orbit-pitch", 0, "Tilt the fitted camera (degrees)")
	zoom := fs.Float64("zoom", 1, "Scale the fitted camera distance")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", usageError(pickUsage), err)
	}
	args = fs.Args()

	if len(args) < 3 {
		return usageError(pickUsage)
	}
	if *zoom <= 0 {
		return fmt.Errorf("invalid zoom %v: must be positive", *zoom)
	}
	x, err := strconv.ParseFloat(args[1], 32)
	if err != nil {
		return fmt.Errorf("invalid x %q: %w", args[1], err)
	}
	y, err := strconv.ParseFloat(args[2], 32)
	if err != nil {
		return fmt.Errorf("invalid y %q: %w", args[2], err)
	}
	mode, err := picking.ParseMode(cfg.Picking.Mode)
	if err != nil {
		return err
	}

	model, _, err := importScene(cfg, args[0])
	if err != nil {
		return err
	}

	cam := camera.NewOrbitCamera()
	cam.FovY = cfg.Camera.FovY * math32.Pi / 180
	cam.Pitch = cfg.Camera.Pitch * math32.Pi / 180
	cam.Yaw = cfg.Camera.Yaw * math32.Pi / 180
	cam.FitToBounds(model.Bounds())
	cam.Orbit(float32(*orbitYaw)*math32.Pi/180, float32(*orbitPitch)*math32.Pi/180)
	cam.Zoom(float32(*zoom))

	vw, vh := float32(cfg.Viewport.Width), float32(cfg.Viewport.Height)
	hit, ok := picking.PickFrom(cam, mode, float32(x), float32(y), vw, vh, model)
	if !ok {
		fmt.Fprintln(w, "no intersection")
		return nil
	}

	e := model.Entry(hit.Entry)
	fmt.Fprintf(w, "Hit:      (%.4f, %.4f, %.4f)\n", hit.Position.X, hit.Position.Y, hit.Position.Z)
	fmt.Fprintf(w, "Distance: %.4f\n", hit.Distance)
	fmt.Fprintf(w, "Entry:    #%d %s (triangle %d)\n", hit.Entry, e.Name(), hit.Triangle)
	fmt.Fprintf(w, "Material: %s\n", e.Material().Name)
	return nil
}

func cmdConfig(w io.Writer, cfg *config.Config, args []string) error {
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote %s\n", args[0])
		return nil
	}
	path, err := cfg.Save()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %s\n", path)
	return nil
}
