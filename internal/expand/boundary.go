package expand

import (
	"math"

	"github.com/mztrk/ExpendbyPeriods/internal/dataframe"
	"github.com/mztrk/ExpendbyPeriods/internal/rolling"
)

// entityIDs assigns every row the id of its entity. Ids come from key tuple
// equality, so composite keys never collide whatever their values contain.
type entityIDs []int

func newEntityIDs(df *dataframe.DataFrame, keys []string) (entityIDs, error) {
	index, err := dataframe.NewKeyIndex(df, keys)
	if err != nil {
		return nil, err
	}
	defer index.Release()

	ids := make(entityIDs, df.Len())
	for id, rows := range index.Groups() {
		for _, row := range rows {
			ids[row] = id
		}
	}
	return ids, nil
}

// sameEntity reports whether row i and the row distance steps away in dir
// exist and belong to the same entity.
func (ids entityIDs) sameEntity(i, distance int, dir rolling.Direction) bool {
	j := i - distance
	if dir == rolling.Forward {
		j = i + distance
	}
	if j < 0 || j >= len(ids) {
		return false
	}
	return ids[i] == ids[j]
}

// mask nulls every derived value whose window reaches across an entity
// boundary. The window computation itself is not entity-aware; on sorted
// input an entity's rows are contiguous, so comparing the current row with
// the furthest row of its window is enough.
func (ids entityIDs) mask(values []float64, valid []bool, distance int, dir rolling.Direction) {
	for i := range values {
		if !ids.sameEntity(i, distance, dir) {
			values[i] = math.NaN()
			valid[i] = false
		}
	}
}
