// Package compass holds the operator's selection around the hexagonal field diagram.
//
// A selection is a hexagon side (0-5), a column slot along that side (0-2) and an
// independent row slot (0-3). Side and column resolve to one of 18 position numbers,
// starting at 1 on the bottom side and running counterclockwise in groups of three.
//
// All operations are pure value transforms; callers own the Selection value.
package compass
