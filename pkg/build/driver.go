package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shawnvosburg/DeployUS/pkg/buildcfg"
	"github.com/shawnvosburg/DeployUS/pkg/errs"
	"github.com/shawnvosburg/DeployUS/pkg/object"
)

const objectExt = ".o"

// Driver compiles and links one buildcfg.Config using a CommandRunner,
// consulting and updating a Cache so unchanged sources are skipped.
type Driver struct {
	Config   *buildcfg.Config
	Cache    *Cache
	Runner   CommandRunner
	Root     string // repo-relative root the executable and object dir live under
	Compiler string
	Linker   string
}

// NewDriver loads the cache rooted at root and returns a ready Driver.
// compiler/linker name the external tools to invoke (e.g. "cc"); an
// empty compiler defaults to "cc", and an empty linker defaults to the
// compiler.
func NewDriver(cfg *buildcfg.Config, root string, runner CommandRunner, compiler, linker string) (*Driver, error) {
	cache, err := Load(root)
	if err != nil {
		return nil, err
	}
	if compiler == "" {
		compiler = "cc"
	}
	if linker == "" {
		linker = compiler
	}
	return &Driver{Config: cfg, Cache: cache, Runner: runner, Root: root, Compiler: compiler, Linker: linker}, nil
}

func objectPath(root string, unit buildcfg.CompileUnit) string {
	return filepath.Join(CacheDir(root), unit.Output+objectExt)
}

// MinimalRecompileSet hashes every compile unit's current source
// contents and returns only those whose (output, source, digest)
// triple is not already present in the cache.
func (d *Driver) MinimalRecompileSet() ([]buildcfg.CompileUnit, error) {
	var toCompile []buildcfg.CompileUnit
	for _, unit := range d.Config.Compile {
		data, err := os.ReadFile(d.Config.SourcePath(unit))
		if err != nil {
			return nil, errs.Wrap(errs.IOError, fmt.Sprintf("build: read %s", unit.Source), err)
		}
		digest := object.HashBytes(data)
		if d.Cache.Has(objectPath(d.Root, unit), unit.Source, digest) {
			continue
		}
		toCompile = append(toCompile, unit)
	}
	return toCompile, nil
}

// Compile invokes the compiler over the minimal recompile set. A
// compile failure aborts immediately with a non-zero result; cache
// entries are flushed to disk one at a time so a later failure in the
// same batch does not discard already-successful compiles.
func (d *Driver) Compile(ctx context.Context) error {
	units, err := d.MinimalRecompileSet()
	if err != nil {
		return err
	}
	for _, unit := range units {
		obj := objectPath(d.Root, unit)
		if err := os.MkdirAll(filepath.Dir(obj), 0o755); err != nil {
			return errs.Wrap(errs.IOError, fmt.Sprintf("build: mkdir for %s", obj), err)
		}
		src := d.Config.SourcePath(unit)
		args := []string{"-c", src, "-o", obj}
		if out, err := d.Runner.Run(ctx, d.Compiler, args); err != nil {
			return errs.Wrap(errs.CompileFailed, fmt.Sprintf("build: compile %s: %s", unit.Source, out), err)
		}

		data, err := os.ReadFile(src)
		if err != nil {
			return errs.Wrap(errs.IOError, fmt.Sprintf("build: re-read %s", unit.Source), err)
		}
		if err := d.Cache.Record(obj, unit.Source, object.HashBytes(data)); err != nil {
			return err
		}
	}
	return nil
}

// ExecutablePath returns the linked binary's path: the project name,
// placed directly in Root (the config's own directory), alongside the
// cache directory.
func (d *Driver) ExecutablePath() string {
	return filepath.Join(d.Root, d.Config.ProjectName)
}

// MustRelink reports whether the previous link's project cache record
// differs from the current configuration, or the executable is
// missing.
func (d *Driver) MustRelink() (bool, error) {
	rec, err := d.Cache.ProjectRecord()
	if err != nil {
		return false, err
	}
	configDigest := object.HashBytes(d.Config.Canonical())

	if rec.ExecutablePath != d.ExecutablePath() {
		return true, nil
	}
	if rec.ConfigDigest != configDigest {
		return true, nil
	}
	if _, err := os.Stat(d.ExecutablePath()); err != nil {
		return true, nil
	}
	return false, nil
}

// Link invokes the linker over every compile unit's object file when
// MustRelink is true, then persists the new project cache record. A
// link failure leaves the compile cache untouched.
func (d *Driver) Link(ctx context.Context) error {
	relink, err := d.MustRelink()
	if err != nil {
		return err
	}
	if !relink {
		return nil
	}

	var objs []string
	for _, unit := range d.Config.Compile {
		objs = append(objs, objectPath(d.Root, unit))
	}
	args := append(objs, "-o", d.ExecutablePath())
	args = append(args, d.Config.LibraryLibs...)

	if out, err := d.Runner.Run(ctx, d.Linker, args); err != nil {
		return errs.Wrap(errs.LinkFailed, fmt.Sprintf("build: link: %s", out), err)
	}

	configDigest := object.HashBytes(d.Config.Canonical())
	return d.Cache.WriteProjectRecord(ProjectCacheRecord{
		ExecutablePath: d.ExecutablePath(),
		ConfigDigest:   configDigest,
	})
}

// Clean removes the executable named by the project cache record, if
// any, and the entire intermediate cache directory. Both removals
// tolerate already-missing files; errors are accumulated and reported
// together rather than aborting after the first.
func Clean(root string) error {
	var errMsgs []string

	rec, err := (&Cache{root: root}).ProjectRecord()
	if err == nil && rec.ExecutablePath != "" {
		if err := os.Remove(rec.ExecutablePath); err != nil && !os.IsNotExist(err) {
			errMsgs = append(errMsgs, fmt.Sprintf("remove executable: %v", err))
		}
	}

	if err := os.RemoveAll(CacheDir(root)); err != nil {
		errMsgs = append(errMsgs, fmt.Sprintf("remove cache dir: %v", err))
	}

	if len(errMsgs) > 0 {
		return errs.New(errs.IOError, "build: clean: "+fmt.Sprint(errMsgs))
	}
	return nil
}
