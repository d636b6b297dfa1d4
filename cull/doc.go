// Package cull turns tree queries into id sets for render culling and
// broad-phase collision.
//
// Items are uint32 ids. Visibility sets are roaring bitmaps; overlap pairs
// are packed into a roaring64 bitmap as (a << 32 | b).
package cull
