// Command csvbits scans CSV files with the structural tokenizer and reports
// record and field counts plus a digest of the boundary stream, or dumps the
// decoded records. Gzip-compressed input (.gz) is decompressed on the fly;
// plain files are memory-mapped where the platform supports it.
//
// Usage:
//
//	csvbits [-sep ,] [-rows] file.csv [file2.csv.gz ...]
package main

import (
	"bytes"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/gzip"

	"github.com/csvbits/csvbits"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("csvbits: ")

	sep := flag.String("sep", ",", "field separator (single byte)")
	rows := flag.Bool("rows", false, "print decoded records instead of the summary")
	flag.Parse()

	if len(*sep) != 1 {
		log.Fatalf("separator must be a single byte, got %q", *sep)
	}
	if flag.NArg() == 0 {
		log.Fatal("no input files")
	}

	for _, name := range flag.Args() {
		if err := process(name, (*sep)[0], *rows); err != nil {
			log.Fatalf("%s: %v", name, err)
		}
	}
}

// process loads one input file and either dumps its records or prints the
// boundary summary.
func process(name string, sep byte, rows bool) error {
	data, cleanup, err := loadInput(name)
	if err != nil {
		return err
	}
	defer cleanup()

	if rows {
		return dumpRows(data, sep)
	}
	return report(name, data, sep)
}

// loadInput returns the file's bytes: gzip-decompressed for .gz files,
// memory-mapped otherwise.
func loadInput(name string) ([]byte, func(), error) {
	if !strings.HasSuffix(name, ".gz") {
		return mapFile(name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, nil, fmt.Errorf("gzip: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, nil, fmt.Errorf("gzip: %w", err)
	}
	return data, func() {}, nil
}

// report tokenizes data and prints byte, record and field counts together
// with a digest of the boundary stream. The digest folds each boundary's
// offset and kind into an xxhash sum, so two inputs agree on it exactly when
// their structural layouts agree.
func report(name string, data []byte, sep byte) error {
	table, err := csvbits.NewTable(sep)
	if err != nil {
		return err
	}

	bounds, err := csvbits.TokenizeWithTable(data, table)
	if err != nil {
		return err
	}

	digest := xxhash.New()
	var scratch [9]byte
	records := 0
	for _, b := range bounds {
		if b.Kind == csvbits.RecordEnd {
			records++
		}
		binary.LittleEndian.PutUint64(scratch[:8], uint64(b.Offset))
		scratch[8] = byte(b.Kind)
		digest.Write(scratch[:])
	}

	fmt.Printf("%s: %d bytes, %d records, %d fields, boundary digest %016x\n",
		name, len(data), records, len(bounds), digest.Sum64())
	return nil
}

// dumpRows decodes and prints every record, tab-separated.
func dumpRows(data []byte, sep byte) error {
	r := csvbits.NewReader(bytes.NewReader(data))
	r.Comma = rune(sep)
	r.ReuseRecord = true

	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(record, "\t"))
	}
}
