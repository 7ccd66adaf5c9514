// Command tsfiledump is a read-only diagnostic tool: point it at a
// .tsfile and it prints the table schema and, optionally, a row dump.
// Grounded on the teacher's root main.go entrypoint shape — a small
// func main gluing a DB-like interface together — generalized here
// from a stub into an actual consumer of the tsfile package.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tsfile-go/tsfile"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "tsfiledump:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("tsfiledump", flag.ContinueOnError)
	table := fs.String("table", "", "dump rows for this table (default: schema only)")
	from := fs.Int64("from", -1<<63, "start of the timestamp range (inclusive)")
	to := fs.Int64("to", 1<<63-1, "end of the timestamp range (inclusive)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: tsfiledump [-table NAME] [-from T] [-to T] <path.tsfile>")
	}

	r, err := tsfile.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}

	printBloomFilterSize(r)

	names := r.TableNames()
	if *table == "" {
		fmt.Printf("%d table(s):\n", len(names))
		for _, name := range names {
			if err := printSchema(r, name); err != nil {
				return err
			}
		}
		return nil
	}

	if err := printSchema(r, *table); err != nil {
		return err
	}
	return dumpRows(r, *table, *from, *to)
}

func printSchema(r *tsfile.Reader, table string) error {
	schema, err := r.TableSchema(table)
	if err != nil {
		return fmt.Errorf("schema %q: %w", table, err)
	}
	fmt.Printf("table %s\n", schema.Name)
	for _, c := range schema.Columns {
		fmt.Printf("  %-20s %-10s %s\n", c.Name, c.Type, c.Category)
	}
	devices, err := r.DeviceCount(table)
	if err != nil {
		return fmt.Errorf("device count %q: %w", table, err)
	}
	fmt.Printf("  %d device(s)\n", devices)
	return nil
}

func printBloomFilterSize(r *tsfile.Reader) {
	fmt.Printf("bloom filter: m=%d bits, k=%d hashes\n", r.BloomFilterM(), r.BloomFilterK())
}

func dumpRows(r *tsfile.Reader, table string, from, to int64) error {
	rs, err := r.Query(table, nil, from, to)
	if err != nil {
		return fmt.Errorf("query %q: %w", table, err)
	}
	cols := rs.Metadata()
	for rs.Next() {
		fmt.Printf("%d", rs.Time())
		for i := 1; i < len(cols); i++ {
			v, err := rs.GetValue(i)
			if err != nil {
				return err
			}
			fmt.Printf("\t%v", v)
		}
		fmt.Println()
	}
	return nil
}
