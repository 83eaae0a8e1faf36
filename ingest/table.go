package ingest

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/mixgo/model"
)

// ErrInvalidTable is returned by BracketTable.Validate.
var ErrInvalidTable = errors.New("ingest: invalid bracket table")

// BracketTable maps a bin index to the brackets of the collisions that fall
// in that bin, in the order the collisions were finalized.
type BracketTable [][]model.Bracket

// NewBracketTable returns a table with nbins empty bins.
func NewBracketTable(nbins int) BracketTable {
	return make(BracketTable, nbins)
}

// Bin returns the brackets of bin, or nil when bin is out of range.
func (t BracketTable) Bin(bin int) []model.Bracket {
	if bin < 0 || bin >= len(t) {
		return nil
	}
	return t[bin]
}

// Len returns the total number of brackets.
func (t BracketTable) Len() int {
	n := 0
	for _, bs := range t {
		n += len(bs)
	}
	return n
}

// Hadrons returns the summed length of every bracket.
func (t BracketTable) Hadrons() int {
	n := 0
	for _, bs := range t {
		for _, b := range bs {
			n += b.Len()
		}
	}
	return n
}

// Find returns the first bracket of bin owned by collisionID.
func (t BracketTable) Find(bin, collisionID int) (model.Bracket, bool) {
	for _, b := range t.Bin(bin) {
		if b.CollisionID == collisionID {
			return b, true
		}
	}
	return model.Bracket{}, false
}

// Validate checks that every bracket lies within [0, nHadrons), that brackets
// are pairwise disjoint and that each of the nCollisions collisions owns
// exactly one bracket.
func (t BracketTable) Validate(nHadrons, nCollisions int) error {
	hadrons := bitset.New(uint(nHadrons))
	owners := bitset.New(uint(nCollisions))

	for bin, bs := range t {
		for _, b := range bs {
			if b.Start < 0 || b.End < b.Start || b.End >= nHadrons {
				return fmt.Errorf("%w: bin %d: %s out of bounds", ErrInvalidTable, bin, b)
			}
			if b.CollisionID < 0 || b.CollisionID >= nCollisions {
				return fmt.Errorf("%w: bin %d: %s unknown collision", ErrInvalidTable, bin, b)
			}
			if owners.Test(uint(b.CollisionID)) {
				return fmt.Errorf("%w: collision %d owns more than one bracket", ErrInvalidTable, b.CollisionID)
			}
			owners.Set(uint(b.CollisionID))

			for i := b.Start; i <= b.End; i++ {
				if hadrons.Test(uint(i)) {
					return fmt.Errorf("%w: bin %d: %s overlaps hadron %d", ErrInvalidTable, bin, b, i)
				}
				hadrons.Set(uint(i))
			}
		}
	}

	if c := owners.Count(); c != uint(nCollisions) {
		return fmt.Errorf("%w: %d of %d collisions have a bracket", ErrInvalidTable, c, nCollisions)
	}
	return nil
}
