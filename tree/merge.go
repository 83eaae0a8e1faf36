package tree

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"
)

// Merge concatenates the partitions of the candidate and collision trees of
// the file at in into flat trees of a new file at out. The result is written
// to a temporary file next to out and renamed over it once complete, so out
// may name the input itself.
func Merge(ctx context.Context, in, out string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	src, err := Open(in)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(out), ".merge-*.root")
	if err != nil {
		_ = src.Close()
		return fmt.Errorf("tree: create %s: %w", out, err)
	}
	tmpName := tmp.Name()
	_ = tmp.Close()

	err = mergeInto(ctx, src, tmpName, logger)
	if cerr := src.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, out); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("tree: rename %s: %w", out, err)
	}
	return nil
}

func mergeInto(ctx context.Context, src *Source, path string, logger *slog.Logger) error {
	dst, err := groot.Create(path)
	if err != nil {
		return fmt.Errorf("tree: create %s: %w", path, err)
	}

	var crec collisionRecord
	var rec candidateRecord
	merges := []struct {
		name  string
		rvars []rtree.ReadVar
		wvars []rtree.WriteVar
	}{
		{CollisionTree, rtree.ReadVarsFromStruct(&crec), rtree.WriteVarsFromStruct(&crec)},
		{CandidateTree, rtree.ReadVarsFromStruct(&rec), rtree.WriteVarsFromStruct(&rec)},
	}

	for _, m := range merges {
		trees, err := src.Trees(m.name)
		if err != nil {
			_ = dst.Close()
			return err
		}
		n, err := copyTrees(ctx, dst, m.name, trees, m.rvars, m.wvars)
		if err != nil {
			_ = dst.Close()
			return err
		}
		logger.InfoContext(ctx, "merged tree",
			"tree", m.name,
			"partitions", len(trees),
			"entries", n,
		)
	}
	return dst.Close()
}

// copyTrees reads every entry of trees through rvars and writes it through
// wvars. Both must bind the same record.
func copyTrees(ctx context.Context, dir riofs.Directory, name string, trees []rtree.Tree, rvars []rtree.ReadVar, wvars []rtree.WriteVar) (int64, error) {
	w, err := rtree.NewWriter(dir, name, wvars)
	if err != nil {
		return 0, fmt.Errorf("tree: create %s: %w", name, err)
	}

	var n int64
	for _, t := range trees {
		if err := ctx.Err(); err != nil {
			_ = w.Close()
			return n, err
		}
		r, err := rtree.NewReader(t, rvars)
		if err != nil {
			_ = w.Close()
			return n, fmt.Errorf("tree: reader for %s: %w", name, err)
		}
		err = r.Read(func(rtree.RCtx) error {
			if _, err := w.Write(); err != nil {
				return err
			}
			n++
			return nil
		})
		r.Close()
		if err != nil {
			_ = w.Close()
			return n, fmt.Errorf("tree: merge %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return n, fmt.Errorf("tree: close %s: %w", name, err)
	}
	return n, nil
}
