package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shawnvosburg/DeployUS/pkg/build"
	"github.com/shawnvosburg/DeployUS/pkg/buildcfg"
)

const configExt = ".buildus"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: buildus <config-file>.buildus | buildus clean")
	}

	if args[0] == "clean" {
		dir, err := os.Getwd()
		if err != nil {
			return err
		}
		return build.Clean(dir)
	}

	configPath := args[0]
	if filepath.Ext(configPath) != configExt {
		return fmt.Errorf("config file must have %s extension", configExt)
	}

	cfg, err := (buildcfg.YAMLSource{}).Load(configPath)
	if err != nil {
		return err
	}

	root := filepath.Dir(configPath)
	d, err := build.NewDriver(cfg, root, build.ExecRunner{}, compilerName(), compilerName())
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := d.Compile(ctx); err != nil {
		return err
	}
	return d.Link(ctx)
}

// compilerName honors $CC the way a real build driver would, falling
// back to cc.
func compilerName() string {
	if cc := strings.TrimSpace(os.Getenv("CC")); cc != "" {
		return cc
	}
	return "cc"
}
