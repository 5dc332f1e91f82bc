// girt-browse inspects introspected namespaces: it loads a namespace
// through the lazy binding loader, forces eager resolution, and lists every
// symbol with its resolved shape. The -i flag starts an interactive TUI.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"

	"github.com/bindlab/girt/compound"
	"github.com/bindlab/girt/loader"
	"github.com/bindlab/girt/meta"
	"github.com/bindlab/girt/typesys"
)

func main() {
	var (
		namespace   = flag.String("ns", "Demo", "Namespace to load")
		version     = flag.String("version", "", "Requested namespace version")
		list        = flag.Bool("list", false, "List resolved symbols and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*namespace, *version); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*namespace, *version, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLoader() *loader.Loader {
	types := typesys.NewRegistry()
	compounds := compound.NewRegistry(types)
	return loader.New(demoRepository(), types, compounds, loader.DefaultOptions())
}

func run(namespace, version string, listOnly bool) error {
	ld := newLoader()

	pkg, err := ld.LoadPackage(namespace, version)
	if err != nil {
		return fmt.Errorf("load namespace: %w", err)
	}
	pkg.Resolve()

	fmt.Printf("Namespace: %s %s\n", pkg.Namespace(), pkg.Version())

	names := pkg.Symbols()
	sort.Strings(names)
	fmt.Printf("Symbols: %d\n\n", len(names))

	for _, name := range names {
		v, ok, err := pkg.Lookup(name)
		switch {
		case err != nil:
			fmt.Printf("  %-20s <error: %v>\n", name, err)
		case !ok:
			fmt.Printf("  %-20s <absent>\n", name)
		default:
			fmt.Printf("  %-20s %s\n", name, describe(v))
		}
	}

	if listOnly {
		return nil
	}

	fmt.Println("\nUse -i for interactive browsing.")
	return nil
}

func describe(v any) string {
	switch t := v.(type) {
	case *loader.Enum:
		return fmt.Sprintf("enum {%s}", strings.Join(t.Names(), ", "))
	case *loader.Flags:
		return fmt.Sprintf("flags {%s}", strings.Join(t.Names(), ", "))
	case *loader.Struct:
		parts := []string{"struct"}
		if n := len(t.Fields()); n > 0 {
			parts = append(parts, fmt.Sprintf("%d fields", n))
		}
		return strings.Join(parts, ", ")
	case *loader.Entity:
		kind := "object"
		if t.Kind() == meta.KindInterface {
			kind = "interface"
		}
		if n := t.Inherits().Len(); n > 0 {
			return fmt.Sprintf("%s, %d ancestors", kind, n)
		}
		return kind
	default:
		return fmt.Sprintf("%T = %v", v, v)
	}
}
