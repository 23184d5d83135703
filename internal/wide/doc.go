// Package wide provides SIMD-friendly batch kernels for the software
// renderer.
//
// The kernels work on 16 pixels at a time in Structure-of-Arrays form using
// fixed-size arrays and simple loops, which the Go compiler can lower to
// vector instructions on amd64 and arm64. No assembly or unsafe is used.
//
// Every batch kernel produces exactly the same bytes as the packed scalar
// formula it replaces, so switching between them never changes output.
//
// # Usage Example
//
//	if wide.Available() {
//		wide.FillSolid(row[x:x+n], color)
//	}
package wide
