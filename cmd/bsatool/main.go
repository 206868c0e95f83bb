// bsatool is a CLI utility for working with .bsa archives and the models
// stored in them.
package main

import (
	"cmp"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Faultbox/vvardenfell/internal/assets"
	"github.com/Faultbox/vvardenfell/internal/logger"
	"github.com/Faultbox/vvardenfell/internal/model"
	"github.com/Faultbox/vvardenfell/pkg/bsa"
)

func main() {
	app := &cli.App{
		Name:  "bsatool",
		Usage: ".bsa archive utility",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "Log level (debug, info, warn, error)", EnvVars: []string{"BSATOOL_LOG_LEVEL"}},
		},
		Before: func(c *cli.Context) error {
			return logger.Init(c.String("log-level"), "")
		},
		After: func(c *cli.Context) error {
			logger.Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "Show archive information",
				ArgsUsage: "<file.bsa>",
				Action:    cmdInfo,
			},
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "List files, optionally filtered by a glob or substring",
				ArgsUsage: "<file.bsa> [pattern]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "n", Usage: "Limit output to N files (0 = all)"},
					&cli.BoolFlag{Name: "l", Usage: "Show size, offset and hash"},
				},
				Action: cmdList,
			},
			{
				Name:      "extract",
				Aliases:   []string{"x"},
				Usage:     "Extract one file, or every file matching a pattern",
				ArgsUsage: "<file.bsa> <path|pattern> [output_dir]",
				Action:    cmdExtract,
			},
			{
				Name:      "search",
				Aliases:   []string{"find"},
				Usage:     "Search one or more archives by name",
				ArgsUsage: "<file.bsa>... <pattern>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "n", Value: 50, Usage: "Stop after N matches (0 = all)"},
				},
				Action: cmdSearch,
			},
			{
				Name:      "hash",
				Usage:     "Print the directory hash of paths",
				ArgsUsage: "<path>...",
				Action:    cmdHash,
			},
			{
				Name:      "model",
				Usage:     "Parse a model and print its scene graph",
				ArgsUsage: "<file.bsa>... <path>",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "scale", Value: float64(model.DefaultUnitScale), Usage: "Game units to output units factor"},
					&cli.BoolFlag{Name: "t", Usage: "Show node transforms"},
					&cli.BoolFlag{Name: "weld", Usage: "Weld identical vertices"},
					&cli.BoolFlag{Name: "optimize", Usage: "Reorder triangles for the vertex cache"},
					&cli.BoolFlag{Name: "normals", Usage: "Generate missing normals"},
				},
				Action: cmdModel,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usageError(c *cli.Context) error {
	return cli.Exit(fmt.Sprintf("Usage: bsatool %s %s", c.Command.Name, c.Command.ArgsUsage), 2)
}

func cmdInfo(c *cli.Context) error {
	if c.NArg() < 1 {
		return usageError(c)
	}
	archive, err := bsa.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer archive.Close()

	type extStat struct {
		ext   string
		count int
		size  uint64
	}
	byExt := make(map[string]*extStat)
	var totalSize uint64
	for _, e := range archive.Entries() {
		ext := strings.ToLower(filepath.Ext(e.Name))
		if ext == "" {
			ext = "(none)"
		}
		st, ok := byExt[ext]
		if !ok {
			st = &extStat{ext: ext}
			byExt[ext] = st
		}
		st.count++
		st.size += uint64(e.Size)
		totalSize += uint64(e.Size)
	}

	h := archive.Header()
	fmt.Printf("Archive:  %s\n", archive.Path())
	fmt.Printf("Version:  %#x\n", h.Version)
	fmt.Printf("Files:    %d\n", h.FileCount)
	fmt.Printf("Data:     %.2f MB\n", float64(totalSize)/(1024*1024))
	fmt.Println()

	stats := slices.Collect(maps.Values(byExt))
	slices.SortFunc(stats, func(a, b *extStat) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return strings.Compare(a.ext, b.ext)
	})
	fmt.Printf("  %-10s %7s %10s\n", "type", "files", "MB")
	for _, st := range stats {
		fmt.Printf("  %-10s %7d %10.2f\n", st.ext, st.count, float64(st.size)/(1024*1024))
	}
	return nil
}

func cmdList(c *cli.Context) error {
	if c.NArg() < 1 {
		return usageError(c)
	}
	archive, err := bsa.Open(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer archive.Close()

	pattern := strings.ToLower(c.Args().Get(1))
	limit := c.Int("n")

	entries := archive.Entries()
	slices.SortFunc(entries, func(a, b bsa.Entry) int { return strings.Compare(a.Name, b.Name) })

	count := 0
	for _, e := range entries {
		if pattern != "" && !matches(e.Name, pattern) {
			continue
		}
		if c.Bool("l") {
			fmt.Printf("%10d %10d %08x%08x %s\n", e.Size, e.AbsoluteOffset, e.Hash.High, e.Hash.Low, e.Name)
		} else {
			fmt.Println(e.Name)
		}
		count++
		if limit > 0 && count >= limit {
			break
		}
	}

	if pattern != "" {
		fmt.Fprintf(os.Stderr, "\n(%d files matched)\n", count)
	}
	return nil
}

// matches reports whether the base name matches a glob pattern or the
// path contains pattern. pattern must be lowercase.
func matches(name, pattern string) bool {
	lower := strings.ToLower(name)
	base := lower[strings.LastIndexAny(lower, `\/`)+1:]
	if ok, _ := filepath.Match(pattern, base); ok {
		return true
	}
	return strings.Contains(lower, pattern)
}

func cmdExtract(c *cli.Context) error {
	if c.NArg() < 2 {
		return usageError(c)
	}
	archive, err := bsa.Open(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer archive.Close()

	target := c.Args().Get(1)
	outputDir := "."
	if c.NArg() > 2 {
		outputDir = c.Args().Get(2)
	}

	if strings.ContainsAny(target, "*?[") {
		return extractPattern(archive, strings.ToLower(target), outputDir)
	}

	data, err := archive.Read(target)
	if err != nil {
		return err
	}
	outputPath := filepath.Join(outputDir, filepath.Base(localPath(target)))
	if err := writeFile(outputPath, data); err != nil {
		return err
	}
	fmt.Printf("Extracted: %s (%d bytes)\n", outputPath, len(data))
	return nil
}

// extractPattern keeps the archive's directory layout under outputDir.
// A file that fails is reported and skipped, as is a name that would
// resolve outside outputDir.
func extractPattern(archive *bsa.Archive, pattern, outputDir string) error {
	extracted, failed := 0, 0
	for _, e := range archive.Entries() {
		if !matches(e.Name, pattern) {
			continue
		}
		rel := localPath(e.Name)
		if !filepath.IsLocal(rel) {
			fmt.Fprintf(os.Stderr, "%s: unsafe path, skipped\n", e.Name)
			failed++
			continue
		}
		data, err := archive.Extract(&e)
		if err == nil {
			err = writeFile(filepath.Join(outputDir, rel), data)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", e.Name, err)
			failed++
			continue
		}
		fmt.Printf("Extracted: %s\n", e.Name)
		extracted++
	}

	fmt.Fprintf(os.Stderr, "\nExtracted %d files\n", extracted)
	if failed > 0 {
		return fmt.Errorf("%d files failed", failed)
	}
	return nil
}

// localPath converts an archive path to the host separator.
func localPath(name string) string {
	return filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func cmdSearch(c *cli.Context) error {
	if c.NArg() < 2 {
		return usageError(c)
	}
	args := c.Args().Slice()
	pattern := strings.ToLower(args[len(args)-1])
	limit := c.Int("n")

	count := 0
	for _, path := range args[:len(args)-1] {
		archive, err := bsa.Open(path)
		if err != nil {
			return err
		}
		for _, name := range archive.List() {
			if !matches(name, pattern) {
				continue
			}
			fmt.Printf("%s: %s\n", filepath.Base(path), name)
			count++
			if limit > 0 && count >= limit {
				archive.Close()
				fmt.Fprintf(os.Stderr, "\n(stopped after %d matches, use -n 0 for all)\n", count)
				return nil
			}
		}
		archive.Close()
	}

	if count == 0 {
		return cli.Exit("No files found", 1)
	}
	fmt.Fprintf(os.Stderr, "\n(%d files found)\n", count)
	return nil
}

func cmdHash(c *cli.Context) error {
	if c.NArg() < 1 {
		return usageError(c)
	}
	for _, p := range c.Args().Slice() {
		h := bsa.HashPath(p)
		fmt.Printf("%08x%08x %s\n", h.High, h.Low, p)
	}
	return nil
}

func cmdModel(c *cli.Context) error {
	if c.NArg() < 2 {
		return usageError(c)
	}
	args := c.Args().Slice()

	m := assets.NewManager(nil, logger.Named("assets"))
	defer m.Close()
	for _, path := range args[:len(args)-1] {
		if err := m.AddArchive(path); err != nil {
			return err
		}
	}

	scene, err := m.LoadModel(args[len(args)-1], model.BuildOptions{
		UnitScale:       float32(c.Float64("scale")),
		GenerateNormals: c.Bool("normals"),
		Weld:            c.Bool("weld"),
		OptimizeCache:   c.Bool("optimize"),
		Log:             logger.Named("model"),
	})
	if err != nil {
		return err
	}

	printNode(scene.Root, 0, c.Bool("t"))
	fmt.Println()
	fmt.Printf("Bounds:    %v .. %v\n", scene.Bounds.Min, scene.Bounds.Max)
	fmt.Printf("Sphere:    %v r=%.3f\n", scene.Center, scene.Radius)
	fmt.Printf("Materials: %d\n", len(scene.Materials))
	fmt.Println("Textures:")
	for _, tex := range scene.Textures {
		fmt.Printf("  %s\n", tex)
	}
	return nil
}

func printNode(n *model.SceneNode, depth int, transforms bool) {
	line := fmt.Sprintf("%s%s %q", strings.Repeat("  ", depth), n.Type, n.Name)
	if transforms {
		q := n.Local.Quat()
		tr := n.Local.Translation
		line += fmt.Sprintf(" t=(%.3f %.3f %.3f) q=(%.3f %.3f %.3f %.3f) s=%.3f", tr.X, tr.Y, tr.Z, q.X, q.Y, q.Z, q.W, n.Local.Scale)
	}
	if n.Mesh != nil {
		line += fmt.Sprintf(" verts=%d tris=%d material=%s", len(n.Mesh.Positions), len(n.Mesh.Indices)/3, n.Material)
		if n.Mesh.Skin != nil {
			line += fmt.Sprintf(" bones=%d", len(n.Mesh.Skin.Bones))
		}
	}
	if n.Hidden {
		line += " hidden"
	}
	if n.Collision {
		line += " collision"
	}
	fmt.Println(line)
	for _, c := range n.Children {
		printNode(c, depth+1, transforms)
	}
}
