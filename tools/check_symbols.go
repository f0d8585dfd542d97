// Package main cross-checks the entry point names the binding resolves
// against the IUP C header.
//
// NOTE: This checker uses simple regex-based parsing which works for the
// current IUP headers but may be fragile with future header changes. It
// is a development aid, not part of the build: run it by hand after
// bumping the supported toolkit release.
//
// Usage:
//
//	go run tools/check_symbols.go /path/to/iup.h [more headers...]
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

var (
	// Matches exported declarations like:
	//   int IupOpen(int *argc, char ***argv);
	//   Ihandle* IupDialog(Ihandle* child);
	headerDeclPattern = regexp.MustCompile(`\b(Iup[A-Za-z0-9]+)\s*\(`)

	// Matches quoted entry point names in the binding source:
	//   {name: "IupOpen", fn: &a.open},
	bindingNamePattern = regexp.MustCompile(`"(Iup[A-Za-z0-9]+)"`)
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <path-to-iup.h> [more headers...]\n", os.Args[0])
		os.Exit(1)
	}

	declared := make(map[string]bool)
	for _, headerPath := range os.Args[1:] {
		if err := collectHeaderDeclarations(headerPath, declared); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read header %s: %v\n", headerPath, err)
			os.Exit(1)
		}
	}
	fmt.Printf("// Parsed %d exported declarations from %d header(s)\n", len(declared), len(os.Args)-1)

	referenced, err := collectBindingReferences(filepath.Join("iup"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to scan binding sources: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("// Found %d entry point names referenced by the binding\n", len(referenced))

	var unknown []string
	for name := range referenced {
		if !declared[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)

	if len(unknown) > 0 {
		fmt.Fprintf(os.Stderr, "Error: binding references names absent from the headers:\n")
		for _, name := range unknown {
			fmt.Fprintf(os.Stderr, "  %s\n", name)
		}
		os.Exit(1)
	}

	fmt.Println("// OK: every referenced entry point is declared in the headers")
}

func collectHeaderDeclarations(headerPath string, declared map[string]bool) error {
	file, err := os.Open(headerPath)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		for _, matches := range headerDeclPattern.FindAllStringSubmatch(scanner.Text(), -1) {
			declared[matches[1]] = true
		}
	}
	return scanner.Err()
}

func collectBindingReferences(packageDir string) (map[string]bool, error) {
	sources, err := filepath.Glob(filepath.Join(packageDir, "*.go"))
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no Go sources found in %s (run from the repository root)", packageDir)
	}

	referenced := make(map[string]bool)
	for _, source := range sources {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, err
		}
		for _, matches := range bindingNamePattern.FindAllStringSubmatch(string(data), -1) {
			referenced[matches[1]] = true
		}
	}
	return referenced, nil
}
