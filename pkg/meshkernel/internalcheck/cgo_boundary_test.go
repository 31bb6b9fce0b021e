package internalcheck

import (
	"fmt"
	"go/parser"
	"go/token"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const (
	modulePattern  = "github.com/meshkernel/meshkernel-go/pkg/meshkernel/..."
	backendPackage = "github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"
)

// TestCgoConfinedToBackend checks every file, including those excluded by the
// current build tags, so the native binding is covered in pure Go builds.
func TestCgoConfinedToBackend(t *testing.T) {
	cfg := &packages.Config{
		Mode:  packages.NeedName | packages.NeedFiles,
		Tests: true,
	}

	pkgs, err := packages.Load(cfg, modulePattern)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	fset := token.NewFileSet()
	seen := make(map[string]bool)
	var findings []string

	for _, pkg := range pkgs {
		files := append(append([]string{}, pkg.GoFiles...), pkg.IgnoredFiles...)
		for _, path := range files {
			if seen[path] || !strings.HasSuffix(path, ".go") {
				continue
			}
			seen[path] = true

			file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
			if err != nil {
				t.Fatalf("parse %s: %v", path, err)
			}
			for _, imp := range file.Imports {
				name, err := strconv.Unquote(imp.Path.Value)
				if err != nil || name != "C" {
					continue
				}
				if pkg.PkgPath != backendPackage {
					findings = append(findings, fmt.Sprintf("%s: cgo is only allowed in %s", fset.Position(imp.Pos()), backendPackage))
				}
			}
		}
	}

	if len(seen) == 0 {
		t.Fatal("no files inspected")
	}
	if len(findings) > 0 {
		t.Fatalf("cgo boundary violation:\n%s", strings.Join(findings, "\n"))
	}
}
