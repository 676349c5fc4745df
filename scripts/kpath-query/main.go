// kpath-query sends one k-shortest-paths request to kpath-svc and prints
// the ranked paths.
//
// Usage:
//
//	kpath-query [flags] <server-host[:server-port]>
//
// Graph parameters are prompted for interactively. With -quiet the same
// values are read from stdin without prompts:
//
//	echo "3 3 2 0 2  0 1 1  1 2 1  0 2 5" | kpath-query -quiet localhost
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"kpaths/pkg/client"
	"kpaths/pkg/domain"
	"kpaths/pkg/protocol"
)

// ANSI Colors
var (
	RED   = "\033[0;31m"
	GREEN = "\033[0;32m"
	CYAN  = "\033[0;36m"
	GRAY  = "\033[0;90m"
	NC    = "\033[0m" // No Color
)

func init() {
	if runtime.GOOS == "windows" {
		if os.Getenv("WT_SESSION") == "" && os.Getenv("TERM_PROGRAM") != "vscode" {
			RED, GREEN, CYAN, GRAY, NC = "", "", "", "", ""
		}
	}
}

func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	quiet := flag.Bool("quiet", false, "read parameters from stdin without prompts")
	health := flag.String("health", "", "check admin gRPC health at host:port and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <server-host[:server-port]>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *health != "" {
		if err := checkHealth(*health, *timeout); err != nil {
			fail(err)
		}
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	c := client.NewClient(&client.ClientConfig{
		Address: flag.Arg(0),
		Timeout: *timeout,
	})

	var prompt io.Writer = os.Stdout
	if *quiet {
		prompt = io.Discard
	} else {
		fmt.Printf("%sServer: %s%s\n", GRAY, c.Address(), NC)
		fmt.Println("Input parameters for Yen's algorithm:")
	}

	req, err := readRequest(os.Stdin, prompt)
	if err != nil {
		fail(err)
	}

	paths, err := c.KShortestPaths(context.Background(), req)
	if err != nil {
		fail(err)
	}

	printPaths(os.Stdout, paths)
}

func checkHealth(address string, timeout time.Duration) error {
	ctx := context.Background()
	hc, err := client.NewHealthClient(ctx, client.HealthConfig{
		Address:      address,
		Timeout:      timeout,
		MaxRetries:   3,
		RetryBackoff: 200 * time.Millisecond,
	})
	if err != nil {
		return err
	}
	defer hc.Close()

	status, err := hc.Check(ctx, "")
	if err != nil {
		return err
	}
	fmt.Printf("%s%s%s\n", GREEN, status, NC)
	return nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "%sError: %v%s\n", RED, err, NC)
	os.Exit(1)
}

// readRequest читает n, m, k, s, t и m рёбер (a b w) из r.
// Заголовок проверяется до чтения рёбер.
func readRequest(r io.Reader, prompt io.Writer) (*protocol.Request, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	read := func(what string) (uint32, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("%s: %w", what, io.ErrUnexpectedEOF)
		}
		v, err := strconv.ParseUint(scanner.Text(), 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%s: invalid number %q", what, scanner.Text())
		}
		return uint32(v), nil
	}

	var h protocol.Header
	fields := []struct {
		label string
		dst   *uint32
	}{
		{"Number of vertices", &h.N},
		{"Number of edges", &h.M},
		{"Number of shortest paths to find", &h.K},
		{"Source vertex", &h.S},
		{"Destination vertex", &h.T},
	}
	for _, f := range fields {
		fmt.Fprintf(prompt, "%s: ", f.label)
		v, err := read(strings.ToLower(f.label))
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	req := &protocol.Request{N: h.N, K: h.K, S: h.S, T: h.T}
	for i := uint32(0); i < h.M; i++ {
		fmt.Fprintf(prompt, "Edge %d: ", i)

		var e domain.Edge
		for _, dst := range []*uint32{&e.From, &e.To, &e.Weight} {
			v, err := read(fmt.Sprintf("edge %d", i))
			if err != nil {
				return nil, err
			}
			*dst = v
		}
		req.Edges = append(req.Edges, e)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// formatPath печатает путь в виде v0 -> v1 -> ... -> t
func formatPath(p domain.Path) string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.FormatUint(uint64(v), 10)
	}
	return strings.Join(parts, " -> ")
}

func printPaths(w io.Writer, paths []domain.Path) {
	if len(paths) == 0 {
		fmt.Fprintf(w, "%sNo path found%s\n", GRAY, NC)
		return
	}
	for i, p := range paths {
		fmt.Fprintf(w, "%s%d:%s %s\n", CYAN, i+1, NC, formatPath(p))
	}
}
