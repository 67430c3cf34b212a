package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/firemask-mcp/internal/config"
	"github.com/ironsheep/firemask-mcp/internal/imaging"
	"github.com/ironsheep/firemask-mcp/internal/pipeline"
	"github.com/ironsheep/firemask-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Fprintf(stdout, "firemask-mcp %s\n", Version)
			fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
			return 0
		case "--help", "-h", "help":
			printHelp(stdout)
			return 0
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return 2
	}
	// stdout is for MCP protocol
	logger := cfg.NewLogger(stderr)

	if len(args) > 0 && args[0] == "analyze" {
		return analyze(args[1:], cfg, logger, stdout)
	}
	if len(args) > 0 {
		fmt.Fprintf(stderr, "unknown command %q, see --help\n", args[0])
		return 2
	}

	logger.WithFields(logrus.Fields{
		"version":       Version,
		"build_time":    BuildTime,
		"git_commit":    GitCommit,
		"kernel_radius": cfg.KernelRadius,
		"results_dir":   cfg.ResultsDir,
	}).Debug("starting firemask-mcp")

	srv := server.New(cfg, logger)
	if err := srv.Run(); err != nil {
		logger.WithError(err).Error("server error")
		return 1
	}
	return 0
}

// analyzeOutput is the JSON printed by the analyze command.
type analyzeOutput struct {
	Image string `json:"image"`
	*pipeline.Result
	Fire bool `json:"fire"`
}

// analyze runs the pipeline once on a file and prints the summary as JSON.
func analyze(args []string, cfg *config.Config, logger *logrus.Logger, stdout io.Writer) int {
	if len(args) < 1 || len(args) > 2 {
		logger.Error("usage: firemask-mcp analyze <path> [kernel_radius]")
		return 2
	}
	path := args[0]
	radius := cfg.KernelRadius
	if len(args) == 2 {
		r, err := strconv.Atoi(args[1])
		if err != nil || r < 1 {
			logger.WithField("kernel_radius", args[1]).Error("kernel radius must be an integer >= 1")
			return 2
		}
		radius = r
	}

	img, err := imaging.LoadRaster(imaging.NewImageCache(1), path, cfg.MaxSide)
	if err != nil {
		logger.WithError(err).Error("failed to load image")
		return 1
	}

	res, err := pipeline.New(
		pipeline.WithKernelRadius(radius),
		pipeline.WithLogger(logger.WithField("path", path)),
	).Run(img)
	if err != nil {
		logger.WithError(err).Error("analysis failed")
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(analyzeOutput{Image: filepath.Base(path), Result: res, Fire: res.FireSuspected()}); err != nil {
		logger.WithError(err).Error("failed to write result")
		return 1
	}
	return 0
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "firemask-mcp - MCP server for HSV fire detection and mask morphology")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  firemask-mcp                         Run the MCP server on stdin/stdout")
	fmt.Fprintln(w, "  firemask-mcp analyze <path> [radius]  Analyze one image and print JSON")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables (also read from ./.env):")
	fmt.Fprintln(w, "  FIREMASK_KERNEL_RADIUS=2     Morphology kernel radius")
	fmt.Fprintln(w, "  FIREMASK_MAX_SIDE=0          Downscale inputs above this side length")
	fmt.Fprintln(w, "  FIREMASK_MIN_REGION_AREA=1   Smallest fire region reported")
	fmt.Fprintln(w, "  FIREMASK_RESULTS_DIR=        Default directory for result images")
	fmt.Fprintln(w, "  FIREMASK_CACHE_SIZE=16       Decoded images kept in memory, 0 for all")
	fmt.Fprintln(w, "  FIREMASK_LOG_LEVEL=info      debug, info, warn or error")
	fmt.Fprintln(w, "  FIREMASK_LOG_FORMAT=text     text or json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "This server communicates via MCP protocol over stdin/stdout.")
	fmt.Fprintln(w, "Configure it in your MCP client (e.g., Claude Desktop).")
}
