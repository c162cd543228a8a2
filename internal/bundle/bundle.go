// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the merged node attribute file shipped with the
	// recipes and handed to the engine via -y.
	ConfigFileName = "config.yaml"

	// ArchiveName is the bundle file created inside the work directory.
	ArchiveName = "recipes.tar.gz"

	// fallbackConfig is shipped when no config fragments were given.
	fallbackConfig = "{}\n"
)

// Packager filters the recipe tree, merges config fragments, and
// archives the result. The merge is a plain ordered concatenation; how
// later fragments override earlier ones is the engine's business.
type Packager struct {
	// Source is the recipe tree root, normally the invoking working
	// directory.
	Source string
	// Configs are node config fragments in merge order.
	Configs []string
	// Ignore excludes paths from the bundle.
	Ignore Matcher
}

// Build stages the filtered tree plus merged config under workDir and
// archives it deterministically. Returns the archive path. An empty or
// entirely ignored tree still yields a valid archive holding only the
// merged config.
func (p *Packager) Build(workDir string) (string, error) {
	stage := filepath.Join(workDir, "recipes")
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return "", fmt.Errorf("creating staging directory: %w", err)
	}

	if err := p.stageTree(stage); err != nil {
		return "", fmt.Errorf("staging recipes: %w", err)
	}

	// Written after the tree so a config.yaml checked into the recipe
	// tree cannot shadow the merged one.
	if err := p.writeConfig(filepath.Join(stage, ConfigFileName)); err != nil {
		return "", err
	}

	out := filepath.Join(workDir, ArchiveName)
	if err := Archive(stage, out); err != nil {
		return "", fmt.Errorf("archiving recipes: %w", err)
	}
	return out, nil
}

// stageTree mirrors the surviving files of Source into stage. Symlinks
// are dereferenced; broken links and non-regular files are dropped.
func (p *Packager) stageTree(stage string) error {
	matcher := p.Ignore
	if matcher == nil {
		matcher = MatchNothing
	}

	return filepath.WalkDir(p.Source, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(p.Source, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if d.Name() == ".git" || matcher.Match(path, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if matcher.Match(path, false) {
			return nil
		}

		// Stat follows symlinks, so broken links error out here and
		// link targets contribute their content, not the link itself.
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}

		dest := filepath.Join(stage, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		return copyContent(path, dest, info.Mode().Perm())
	})
}

// writeConfig concatenates the config fragments into dest, in order.
// Each fragment must at least parse as YAML; interpreting the content is
// left to the engine.
func (p *Packager) writeConfig(dest string) error {
	if len(p.Configs) == 0 {
		return os.WriteFile(dest, []byte(fallbackConfig), 0o644)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating merged config: %w", err)
	}

	for _, fragment := range p.Configs {
		data, err := os.ReadFile(fragment)
		if err != nil {
			f.Close()
			return fmt.Errorf("reading config fragment: %w", err)
		}

		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			f.Close()
			return fmt.Errorf("config fragment %s is not valid YAML: %w", fragment, err)
		}

		if _, err := f.Write(data); err != nil {
			f.Close()
			return fmt.Errorf("writing merged config: %w", err)
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			if _, err := f.Write([]byte("\n")); err != nil {
				f.Close()
				return fmt.Errorf("writing merged config: %w", err)
			}
		}
	}

	return f.Close()
}

// copyContent copies src to dest with the given permissions.
func copyContent(src, dest string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
