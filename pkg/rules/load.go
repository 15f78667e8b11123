package rules

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/rerades/ai-rules-cli/pkg/log"
)

var ErrNoSources = errors.New("no rule sources")

// Load reads every rule document from sources into a new [Catalog].
//
// Documents that fail to parse are skipped and reported by
// [Catalog.Problems]. An error is returned only if a source cannot be
// walked, or ctx is done. Later sources take precedence over earlier
// ones for rules with equal versions.
func Load(ctx context.Context, sources ...Source) (*Catalog, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	logger := log.WithContext(ctx)

	c := &Catalog{
		rules: make(map[string]*Rule),
	}

	for _, src := range sources {
		count := 0

		err := fs.WalkDir(src.FS, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			ctxErr := ctx.Err()
			if ctxErr != nil {
				return ctxErr
			}

			if d.IsDir() {
				if path != "." && d.Name()[0] == '.' {
					return fs.SkipDir
				}

				return nil
			}

			if !isRuleFile(path) {
				return nil
			}

			data, err := fs.ReadFile(src.FS, path)
			if err != nil {
				c.problems = append(c.problems, Problem{Source: src.Name, Path: path, Err: err})

				return nil
			}

			r, err := Parse(path, data)
			if err != nil {
				logger.WarnContext(ctx, "skipping invalid rule",
					slog.String("source", src.Name),
					slog.String("path", path),
					slog.Any("err", err),
				)
				c.problems = append(c.problems, Problem{Source: src.Name, Path: path, Err: err})

				return nil
			}

			r.Origin = src.Name
			c.add(r)
			count++

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("load rules from %s: %w", src.Name, err)
		}

		logger.DebugContext(ctx, "loaded rules",
			slog.String("source", src.Name),
			slog.Int("count", count),
		)
	}

	c.seal()

	return c, nil
}
