package main

// dataset_gen.go is a tiny helper utility to generate deterministic
// vector datasets for standalone benchmarking of lshnet (outside
// `go test`). It emits one comma-separated float32 vector per line,
// which can later be fed to external benchmarking suites.
//
// Usage:
//   go run ./tools/dataset_gen -n 100000 -dim 64 -seed 42 -out vectors.txt
//
// Flags:
//   -n       number of vectors to generate (default 1e5)
//   -dim     vector dimension (default 64)
//   -seed    RNG seed (default current time)
//   -out     output file (default stdout)
//
// The program is embarrassingly simple but placed under version control
// so that any contributor can regenerate the exact dataset used in
// performance regression hunting.
//
// © 2025 lshnet authors. MIT License.

import (
    "bufio"
    "flag"
    "fmt"
    "math/rand"
    "os"
    "strconv"
    "strings"
    "time"
)

func main() {
    var (
        n       = flag.Int("n", 100_000, "number of vectors to generate")
        dim     = flag.Int("dim", 64, "vector dimension")
        seedVal = flag.Int64("seed", time.Now().UnixNano(), "PRNG seed")
        outPath = flag.String("out", "", "output file (default stdout)")
    )
    flag.Parse()

    rnd := rand.New(rand.NewSource(*seedVal))

    var out *os.File
    var err error
    if *outPath == "" {
        out = os.Stdout
    } else {
        out, err = os.Create(*outPath)
        if err != nil {
            fmt.Fprintln(os.Stderr, "cannot create file:", err)
            os.Exit(1)
        }
        defer out.Close()
    }

    w := bufio.NewWriterSize(out, 1<<20)
    defer w.Flush()

    components := make([]string, *dim)
    for i := 0; i < *n; i++ {
        for j := range components {
            components[j] = strconv.FormatFloat(rnd.NormFloat64(), 'f', 6, 32)
        }
        fmt.Fprintln(w, strings.Join(components, ","))
    }
}
