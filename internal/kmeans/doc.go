// Package kmeans implements the box partitioner used to bulk-load trees.
//
// Boxes are clustered with Lloyd's algorithm over their mass-weighted
// centroids. Seeds are chosen by farthest-point selection and the box-to-mean
// distance is signed, so a mean that lies inside a box is preferred over one
// that merely touches it. The boxes are reordered in place into contiguous
// ranges, one per cluster.
package kmeans
