package tree

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"

	"github.com/hupe1980/mixgo/model"
)

// PartitionPrefix is the name prefix of per-data-frame directories.
const PartitionPrefix = "DF_"

// ErrTreeNotFound is returned when neither a top-level tree nor any
// partition holds the requested tree.
var ErrTreeNotFound = errors.New("tree: tree not found")

var errStop = errors.New("tree: stop")

// Source is an open ROOT input file.
type Source struct {
	f *riofs.File
}

// Open opens the ROOT file at path.
func Open(path string) (*Source, error) {
	f, err := groot.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tree: open %s: %w", path, err)
	}
	return &Source{f: f}, nil
}

// Close closes the file.
func (s *Source) Close() error { return s.f.Close() }

// Partitions returns the names of the DF_* directories in key order.
func (s *Source) Partitions() []string {
	var names []string
	seen := make(map[string]bool)
	for _, k := range s.f.Keys() {
		name := k.Name()
		if !strings.HasPrefix(name, PartitionPrefix) || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool { return partitionLess(names[i], names[j]) })
	return names
}

// partitionLess orders DF_2 before DF_10.
func partitionLess(a, b string) bool {
	a, b = strings.TrimPrefix(a, PartitionPrefix), strings.TrimPrefix(b, PartitionPrefix)
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// Trees returns the tree name at top level or, failing that, the tree name
// of every partition in order.
func (s *Source) Trees(name string) ([]rtree.Tree, error) {
	if obj, err := s.f.Get(name); err == nil {
		t, ok := obj.(rtree.Tree)
		if !ok {
			return nil, fmt.Errorf("tree: %s is a %T, not a tree", name, obj)
		}
		return []rtree.Tree{t}, nil
	}

	var trees []rtree.Tree
	for _, part := range s.Partitions() {
		obj, err := riofs.Dir(s.f).Get(part + "/" + name)
		if err != nil {
			continue
		}
		if t, ok := obj.(rtree.Tree); ok {
			trees = append(trees, t)
		}
	}
	if len(trees) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTreeNotFound, name)
	}
	return trees, nil
}

// Entries returns the number of entries of tree name summed over partitions.
func (s *Source) Entries(name string) (int64, error) {
	trees, err := s.Trees(name)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, t := range trees {
		n += t.Entries()
	}
	return n, nil
}

// Candidates streams the candidate tree.
func (s *Source) Candidates() iter.Seq2[model.CandidateRow, error] {
	var rec candidateRecord
	return stream(s, CandidateTree, rtree.ReadVarsFromStruct(&rec), func() model.CandidateRow { return rec.row() })
}

// Collisions streams the collision tree.
func (s *Source) Collisions() iter.Seq2[model.Collision, error] {
	var rec collisionRecord
	return stream(s, CollisionTree, rtree.ReadVarsFromStruct(&rec), func() model.Collision { return rec.collision() })
}

// Pairs streams a MixedTree written by PairWriter.
func (s *Source) Pairs() iter.Seq2[model.Pair, error] {
	var rec pairRecord
	return stream(s, MixedTree, rec.readVars(), func() model.Pair { return rec.pair() })
}

// stream yields one value per entry of every tree called name. read is
// called after rvars have been filled.
func stream[T any](s *Source, name string, rvars []rtree.ReadVar, read func() T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		trees, err := s.Trees(name)
		if err != nil {
			yield(zero, err)
			return
		}
		for _, t := range trees {
			r, err := rtree.NewReader(t, rvars)
			if err != nil {
				yield(zero, fmt.Errorf("tree: reader for %s: %w", name, err))
				return
			}
			err = r.Read(func(rtree.RCtx) error {
				if !yield(read(), nil) {
					return errStop
				}
				return nil
			})
			r.Close()
			if errors.Is(err, errStop) {
				return
			}
			if err != nil {
				yield(zero, fmt.Errorf("tree: read %s: %w", name, err))
				return
			}
		}
	}
}
