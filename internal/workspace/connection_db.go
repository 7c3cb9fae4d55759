package workspace

import (
	"sort"

	"github.com/specialistvlad/blockgraph/internal/geom"
)

// ConnectionDB is the spatial index of one connection type, kept sorted by
// surface y so neighbour searches only scan a band around the query point.
type ConnectionDB struct {
	checker ConnectionChecker
	conns   []*Connection
}

// NewConnectionDB returns an empty index using checker to vet snap targets.
func NewConnectionDB(checker ConnectionChecker) *ConnectionDB {
	return &ConnectionDB{checker: checker}
}

// Len returns the number of tracked connections.
func (db *ConnectionDB) Len() int { return len(db.conns) }

// indexForY is the first position whose y is greater than y, so equal ys
// keep insertion order.
func (db *ConnectionDB) indexForY(y float64) int {
	return sort.Search(len(db.conns), func(i int) bool { return db.conns[i].pos.Y > y })
}

func (db *ConnectionDB) add(c *Connection) {
	i := db.indexForY(c.pos.Y)
	db.conns = append(db.conns, nil)
	copy(db.conns[i+1:], db.conns[i:])
	db.conns[i] = c
}

func (db *ConnectionDB) remove(c *Connection) {
	lo := sort.Search(len(db.conns), func(i int) bool { return db.conns[i].pos.Y >= c.pos.Y })
	for i := lo; i < len(db.conns) && db.conns[i].pos.Y == c.pos.Y; i++ {
		if db.conns[i] == c {
			db.conns = append(db.conns[:i], db.conns[i+1:]...)
			return
		}
	}
	panic("workspace: connection missing from spatial index")
}

// band returns the index range whose y lies within radius of y.
func (db *ConnectionDB) band(y, radius float64) (lo, hi int) {
	lo = sort.Search(len(db.conns), func(i int) bool { return db.conns[i].pos.Y >= y-radius })
	hi = sort.Search(len(db.conns), func(i int) bool { return db.conns[i].pos.Y > y+radius })
	return lo, hi
}

// Neighbours returns the connections within maxRadius of c.
func (db *ConnectionDB) Neighbours(c *Connection, maxRadius float64) []*Connection {
	var out []*Connection
	lo, hi := db.band(c.pos.Y, maxRadius)
	for _, other := range db.conns[lo:hi] {
		if other.pos.Distance(c.pos) <= maxRadius {
			out = append(out, other)
		}
	}
	return out
}

// SearchForClosest finds the closest connection c could legally snap to if it
// were moved by dxy. It returns nil and maxRadius when nothing qualifies.
func (db *ConnectionDB) SearchForClosest(c *Connection, maxRadius float64, dxy geom.Coordinate) (*Connection, float64) {
	if len(db.conns) == 0 {
		return nil, maxRadius
	}
	// The drag checks measure from c's position, so shift it for the search.
	base := c.pos
	c.pos = base.Add(dxy)
	defer func() { c.pos = base }()

	var best *Connection
	bestRadius := maxRadius
	lo, hi := db.band(c.pos.Y, maxRadius)
	for _, candidate := range db.conns[lo:hi] {
		if db.checker.CanConnect(c, candidate, true, bestRadius) {
			best = candidate
			bestRadius = candidate.pos.Distance(c.pos)
		}
	}
	return best, bestRadius
}
