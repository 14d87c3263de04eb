package cmap

// DartID identifies a dart. 0 is the reserved NULL dart: it always
// exists, is always free in every dimension, and is never allocated or
// removed by the dart store.
type DartID uint32

// NullDart is the permanent, reserved null dart id.
const NullDart DartID = 0

// CellID identifies an i-cell: the minimum dart id in the i-cell's
// orbit. It shares representation with DartID since a cell id is
// always itself some dart id (I5).
type CellID = DartID
