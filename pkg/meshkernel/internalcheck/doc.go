// Package internalcheck holds source-level policy tests for the meshkernel
// packages.
//
// The tests load the packages with golang.org/x/tools/go/packages and walk
// their syntax trees. They guard rules the compiler cannot express: cgo is
// confined to the backend package, and library code reports failures as
// errors instead of panicking.
//
// # Internal Use Only
//
// This package has no API. Applications should import pkg/meshkernel.
package internalcheck
