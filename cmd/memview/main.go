package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"memview/hexdump"
	"memview/inspect"
	"memview/memory"
	_ "memview/ntos"
)

func main() {
	fromFlag := flag.String("from", "", "Directory containing a saved address space dump")
	pidFlag := flag.Int("pid", 0, "PID of a live process to read (linux)")
	addrFlag := flag.String("addr", "", "Address of the struct, e.g. 0x7ffd8000")
	scanFlag := flag.String("scan", "", "AOB pattern to locate the struct, e.g. \"53 45 45 44 ??\" (dump only)")
	typeFlag := flag.String("type", "", "Registered struct type name, e.g. EPROCESS")
	depthFlag := flag.Uint("depth", inspect.DefaultDepth, "Maximum number of chained pointer dereferences")
	hexFlag := flag.Int("hex", 0, "Also hexdump this many bytes at the struct address")
	tableFlag := flag.Bool("table", false, "Render a field/offset/value table instead of the nested view")
	debugFlag := flag.Bool("debug", false, "Dump the resolved struct descriptor")
	flag.Parse()

	if *typeFlag == "" {
		fmt.Println("Error: --type is required; registered types:", strings.Join(inspect.RegisteredNames(), ", "))
		flag.Usage()
		os.Exit(1)
	}

	var reader memory.Reader
	var space *memory.Space

	switch {
	case *fromFlag != "":
		space = memory.NewSpace("dump")
		if err := space.Load(*fromFlag); err != nil {
			fmt.Printf("Error loading dump from %s: %v\n", *fromFlag, err)
			os.Exit(1)
		}
		reader = space
	case *pidFlag != 0:
		live, err := openLive(*pidFlag)
		if err != nil {
			fmt.Printf("Error opening PID %d: %v\n", *pidFlag, err)
			os.Exit(1)
		}
		reader = live
	default:
		fmt.Println("Error: one of --from or --pid is required")
		flag.Usage()
		os.Exit(1)
	}

	addr, err := resolveAddress(space, *addrFlag, *scanFlag)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	if *debugFlag {
		sd, ok := inspect.Lookup(*typeFlag)
		if !ok {
			fmt.Printf("Error: no registered struct named %q\n", *typeFlag)
			os.Exit(1)
		}
		spew.Dump(sd)
	}

	opts := inspect.DefaultOptions()
	opts.Depth = *depthFlag

	if *tableFlag {
		sd, ok := inspect.Lookup(*typeFlag)
		if !ok {
			fmt.Printf("Error: no registered struct named %q\n", *typeFlag)
			os.Exit(1)
		}
		rv, err := memory.ReadValue(reader, addr, sd.Type)
		if err != nil {
			fmt.Printf("Error reading %s at %s: %v\n", *typeFlag, addr, err)
			os.Exit(1)
		}
		inspect.PrintTable(rv.Interface(), reader, os.Stdout)
	} else if err := inspect.PrintAt(os.Stdout, reader, addr, *typeFlag, opts); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	if *hexFlag > 0 {
		data, err := reader.ReadMemory(addr, memory.Size(*hexFlag))
		if err != nil {
			fmt.Printf("Error reading %d bytes at %s: %v\n", *hexFlag, addr, err)
			os.Exit(1)
		}
		hexOpts := hexdump.DefaultOptions()
		hexOpts.StartOffset = addr
		hexOpts.ShowPointers = true
		hexOpts.Reader = reader
		hexdump.DumpToWriter(os.Stdout, data, hexOpts)
	}
}

// resolveAddress picks the struct address from --addr, or from the first
// AOB scan match when --scan is given.
func resolveAddress(space *memory.Space, addrFlag, scanFlag string) (memory.Address, error) {
	if addrFlag != "" {
		parsed, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(addrFlag), "0x"), 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid --addr %q: %w", addrFlag, err)
		}
		return memory.Address(parsed), nil
	}

	if scanFlag == "" {
		return 0, fmt.Errorf("one of --addr or --scan is required")
	}
	if space == nil {
		return 0, fmt.Errorf("--scan requires a dump loaded with --from")
	}

	pattern, mask, err := parseAOB(scanFlag)
	if err != nil {
		return 0, err
	}

	matches, err := space.FindPattern(pattern, mask)
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		return 0, fmt.Errorf("pattern not found")
	}

	fmt.Printf("Found %d matches, using first at %s\n", len(matches), matches[0])
	return matches[0], nil
}

// parseAOB parses a pattern like "53 45 45 44 ??" into bytes and mask,
// where ?? is a wildcard.
func parseAOB(s string) ([]byte, []byte, error) {
	var pattern, mask []byte
	for _, tok := range strings.Fields(s) {
		if tok == "??" {
			pattern = append(pattern, 0)
			mask = append(mask, 0)
			continue
		}
		b, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid pattern byte %q: %w", tok, err)
		}
		pattern = append(pattern, byte(b))
		mask = append(mask, 0xFF)
	}
	if len(pattern) == 0 {
		return nil, nil, fmt.Errorf("empty pattern")
	}
	return pattern, mask, nil
}
