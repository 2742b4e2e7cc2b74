// Package formats provides parsers for the glTF 2.0 model format.
package formats

// Note: the GLB binary container is implemented in glb.go
// Note: the glTF JSON document and buffer resolution are in gltf.go
// Note: typed accessor reads are in accessor.go
