// esmload loads the configured content files and archives, then reports
// what it found. It exercises the whole loading pipeline the way an
// embedding host would.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Faultbox/vvardenfell/internal/assets"
	"github.com/Faultbox/vvardenfell/internal/config"
	"github.com/Faultbox/vvardenfell/internal/content"
	"github.com/Faultbox/vvardenfell/internal/logger"
	"github.com/Faultbox/vvardenfell/internal/model"
	"github.com/Faultbox/vvardenfell/pkg/esm"
)

var (
	flagCell   = flag.String("cell", "", "Print the references of one cell (name or \"x,y\")")
	flagModels = flag.Int("models", 0, "Preload the models of the first N cell references")
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== vvardenfell loader ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("load failed", logger.ErrorFields(err)...)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := content.Load(ctx, cfg, logger.Named("content"))
	if err != nil {
		return err
	}

	fmt.Printf("Files:      %s\n", strings.Join(db.Files, ", "))
	fmt.Printf("Statics:    %d\n", len(db.Statics))
	fmt.Printf("NPCs:       %d\n", len(db.NPCs))
	fmt.Printf("Creatures:  %d\n", len(db.Creatures))
	fmt.Printf("Cells:      %d\n", len(db.Cells))
	fmt.Printf("Lands:      %d\n", len(db.Lands))

	if *flagCell == "" {
		return nil
	}
	cell, ok := db.GetCell(*flagCell)
	if !ok {
		return fmt.Errorf("cell %q not found", *flagCell)
	}
	printCell(db, cell)

	if *flagModels <= 0 {
		return nil
	}
	return preload(ctx, cfg, db, cell)
}

func printCell(db *esm.Database, cell *esm.Cell) {
	fmt.Println()
	fmt.Printf("Cell %q (%s)\n", cell.Name, cell.Key)
	if !cell.Interior() {
		fmt.Printf("  grid %d,%d\n", cell.GridX, cell.GridY)
	}
	if cell.WaterHeight != nil {
		fmt.Printf("  water %.1f\n", *cell.WaterHeight)
	}
	for _, ref := range cell.References {
		model, _ := db.GetModelPath(ref.BaseID)
		fmt.Printf("  %6d %-32s %8.1f %8.1f %8.1f  %s\n",
			ref.RefNum, ref.BaseID, ref.Position[0], ref.Position[1], ref.Position[2], model)
	}
	if len(cell.MovedRefs) > 0 {
		fmt.Printf("  %d moved references\n", len(cell.MovedRefs))
	}
}

func preload(ctx context.Context, cfg *config.Config, db *esm.Database, cell *esm.Cell) error {
	var cache *assets.Cache
	if cfg.Cache.Enabled {
		cache = assets.NewCache(cfg.Cache.ExtractMaxBytes, cfg.Cache.ExtractMaxEntryBytes)
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(cache.Collectors()...)

	m := assets.NewManager(cache, logger.Named("assets"))
	defer m.Close()
	for _, path := range cfg.ArchivePaths() {
		if err := m.AddArchive(path); err != nil {
			return err
		}
	}

	var paths []string
	for _, ref := range cell.References {
		if len(paths) >= *flagModels {
			break
		}
		if p, ok := db.GetModelPath(ref.BaseID); ok && p != "" {
			paths = append(paths, `meshes\`+p)
		}
	}
	// references share models; load each once
	slices.Sort(paths)
	paths = slices.Compact(paths)

	scenes, err := m.PreloadModels(ctx, paths, cfg.Loading.Workers, model.BuildOptions{
		UnitScale:       cfg.Geometry.UnitScale,
		BonesPerVertex:  cfg.Geometry.BonesPerVertex,
		GenerateNormals: cfg.Geometry.GenerateNormals,
		Weld:            cfg.Geometry.WeldVertices,
		OptimizeCache:   cfg.Geometry.OptimizeVertexCache,
		Log:             logger.Named("model"),
	})
	if err != nil {
		return err
	}

	textures := make(map[string]bool)
	for _, s := range scenes {
		for _, tex := range s.Textures {
			textures[tex] = true
		}
	}
	fmt.Println()
	fmt.Printf("Models:     %d of %d\n", len(scenes), len(paths))
	fmt.Printf("Textures:   %d\n", len(textures))

	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			fmt.Printf("%s %.0f\n", mf.GetName(), metric.GetCounter().GetValue())
		}
	}
	return nil
}
