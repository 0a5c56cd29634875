// Package torus implements the geometry of marked cells on an n-dimensional
// wrap-around integer grid: adjacency scoring, row addressing, single-step
// toroidal row shifts and canonical configurations.
//
// Adjacency is evaluated on raw coordinates. Two cells on opposite sides of
// a wrap boundary (coordinate 0 and size-1) are not neighbors even though a
// shift can move a cell across that boundary.
package torus
