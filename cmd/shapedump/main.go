package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/term"

	"github.com/wippyai/shape-tables/shape"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("shapedump: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

func main() {
	var (
		tableFile   = flag.String("table", "", "Path to a generated tag-table file")
		format      = flag.String("format", "text", "Output format: text, json, cbor")
		output      = flag.String("o", "", "Write output to file instead of stdout")
		interactive = flag.Bool("i", false, "Interactive browser")
	)
	flag.Parse()

	if *tableFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: shapedump -table <file> [-format text|json|cbor] [-o file]")
		fmt.Fprintln(os.Stderr, "       shapedump -table <file> -i  (interactive browser)")
		os.Exit(1)
	}

	if err := run(*tableFile, *format, *output, *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(tableFile, format, output string, interactive bool) error {
	data, err := os.ReadFile(tableFile)
	if err != nil {
		return fmt.Errorf("read table: %w", err)
	}

	parsed, err := shape.ParseTagTable(data)
	if err != nil {
		return fmt.Errorf("parse table: %w", err)
	}

	if interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode requires a terminal")
		}
		return runInteractive(tableFile, parsed)
	}

	dump := buildDump(parsed, len(data))

	var out []byte
	switch format {
	case "text":
		out = []byte(renderText(tableFile, dump))
	case "json":
		out, err = json.MarshalIndent(dump, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		out = append(out, '\n')
	case "cbor":
		out, err = cborEncMode.Marshal(dump)
		if err != nil {
			return fmt.Errorf("encode cbor: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q (want text, json, or cbor)", format)
	}

	if output != "" {
		return os.WriteFile(output, out, 0o644)
	}
	_, err = os.Stdout.Write(out)
	return err
}

type dumpTable struct {
	TableBytes int        `json:"table_bytes" cbor:"table_bytes"`
	Enums      []dumpEnum `json:"enums" cbor:"enums"`
}

type dumpEnum struct {
	Tag         int           `json:"tag" cbor:"tag"`
	StaticSize  uint16        `json:"static_size" cbor:"static_size"`
	StaticAlign uint8         `json:"static_align" cbor:"static_align"`
	Dynamic     bool          `json:"dynamic" cbor:"dynamic"`
	Largest     []int         `json:"largest_variants" cbor:"largest_variants"`
	Variants    []dumpVariant `json:"variants" cbor:"variants"`
}

type dumpVariant struct {
	Name   string   `json:"name" cbor:"name"`
	Fields []string `json:"fields" cbor:"fields"`
}

func buildDump(t *shape.TagTable, tableBytes int) dumpTable {
	dump := dumpTable{TableBytes: tableBytes, Enums: make([]dumpEnum, 0, len(t.Enums))}
	for tag, e := range t.Enums {
		de := dumpEnum{
			Tag:         tag,
			StaticSize:  e.StaticSize,
			StaticAlign: e.StaticAlign,
			Dynamic:     e.StaticSize == 0 && e.StaticAlign == 0,
			Largest:     e.Largest,
		}
		for _, v := range e.Variants {
			dv := dumpVariant{Name: v.Name, Fields: make([]string, 0, len(v.Fields))}
			for _, f := range v.Fields {
				dv.Fields = append(dv.Fields, renderNode(f))
			}
			de.Variants = append(de.Variants, dv)
		}
		dump.Enums = append(dump.Enums, de)
	}
	return dump
}

func renderText(tableFile string, dump dumpTable) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table: %s (%d bytes, %d enums)\n", tableFile, dump.TableBytes, len(dump.Enums))
	for _, e := range dump.Enums {
		if e.Dynamic {
			fmt.Fprintf(&b, "\ntag %d: dynamic layout\n", e.Tag)
		} else {
			fmt.Fprintf(&b, "\ntag %d: size %d, align %d\n", e.Tag, e.StaticSize, e.StaticAlign)
		}
		for i, v := range e.Variants {
			marker := " "
			for _, l := range e.Largest {
				if l == i {
					marker = "*"
				}
			}
			fmt.Fprintf(&b, "  %s %s(%s)\n", marker, v.Name, strings.Join(v.Fields, ", "))
		}
	}
	return b.String()
}

// renderNode formats a decoded shape tree on one line.
func renderNode(n *shape.Node) string {
	switch n.Op {
	case shape.OpVec:
		elem := renderNode(n.Children[0])
		if n.Pod {
			return "vec[pod](" + elem + ")"
		}
		return "vec(" + elem + ")"
	case shape.OpStruct, shape.OpClass, shape.OpUniq, shape.OpRptr:
		return n.Op.String() + "(" + renderChildren(n) + ")"
	case shape.OpEnum:
		s := fmt.Sprintf("enum#%d", n.Tag)
		if len(n.Children) > 0 {
			s += "<" + renderChildren(n) + ">"
		}
		return s
	case shape.OpRes:
		return fmt.Sprintf("res#%d(%s)", n.Res, renderChildren(n))
	case shape.OpVar:
		return fmt.Sprintf("var(%d)", n.Slot)
	default:
		return n.Op.String()
	}
}

func renderChildren(n *shape.Node) string {
	parts := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		parts = append(parts, renderNode(c))
	}
	return strings.Join(parts, ", ")
}
