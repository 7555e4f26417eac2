// Command dsdump lists the metadata records stored in a .DS_Store
// container, as text or JSON.
//
// Exit codes: 0 on a clean decode, 1 on a fatal parse error, 2 when
// records were decoded but corruption markers or integrity warnings were
// produced.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robert-malhotra/go-dsstore/dsstore"
)

// CLI defines the command-line interface for dsdump.
var CLI struct {
	Path    string `arg:"" help:".DS_Store file to read." type:"existingfile"`
	JSON    bool   `help:"Emit output as JSON."`
	Free    bool   `help:"Also dump the allocator free lists."`
	Verbose bool   `short:"v" help:"Enable debug logging."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("dsdump"),
		kong.Description("Dump the per-file metadata records of a .DS_Store container."),
	)

	level := slog.LevelWarn
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	code, err := run(os.Stdout)
	ctx.FatalIfErrorf(err)
	os.Exit(code)
}

func run(w io.Writer) (int, error) {
	data, err := os.ReadFile(CLI.Path)
	if err != nil {
		return 1, err
	}
	slog.Debug("read container", "path", CLI.Path, "bytes", len(data))

	store, err := dsstore.Decode(data)
	if err != nil {
		return 1, fmt.Errorf("decoding %s: %w", CLI.Path, err)
	}
	slog.Debug("decoded container",
		"records", len(store.Records),
		"declared", store.Master.RecordCount,
		"depth", store.Master.Depth,
		"names", store.Names())

	if CLI.JSON {
		err = printJSON(w, store, CLI.Free)
	} else {
		err = printText(w, store, CLI.Free)
	}
	if err != nil {
		return 1, err
	}
	if !store.Clean() {
		return 2, nil
	}
	return 0, nil
}

// printText writes one line per record, then the free lists on request,
// then a summary of whatever corruption was found.
func printText(w io.Writer, s *dsstore.Store, free bool) error {
	for _, r := range s.Records {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.FileName, r.Code, r.Value.Kind(), r.Value); err != nil {
			return err
		}
	}

	if free {
		for order := 0; order < 32; order++ {
			offsets := s.FreeList(order)
			if len(offsets) == 0 {
				continue
			}
			fmt.Fprintf(w, "free[2^%d]:", order)
			for _, off := range offsets {
				fmt.Fprintf(w, " 0x%x", off)
			}
			fmt.Fprintln(w)
		}
	}

	for _, warn := range s.Warnings {
		fmt.Fprintf(w, "warning: %v\n", warn)
	}
	if len(s.Corruptions) > 0 {
		fmt.Fprintf(w, "%d corrupt subtree(s):\n", len(s.Corruptions))
		for _, c := range s.Corruptions {
			fmt.Fprintf(w, "  %s\n", c)
		}
	}
	return nil
}

type recordJSON struct {
	FileName string `json:"filename"`
	Code     string `json:"code"`
	Type     string `json:"type"`
	Value    any    `json:"value"`
}

type outputJSON struct {
	Records     []recordJSON        `json:"records"`
	Warnings    []string            `json:"warnings,omitempty"`
	Corruptions []string            `json:"corruptions,omitempty"`
	FreeLists   map[string][]uint32 `json:"free_lists,omitempty"`
}

func printJSON(w io.Writer, s *dsstore.Store, free bool) error {
	out := outputJSON{Records: make([]recordJSON, 0, len(s.Records))}
	for _, r := range s.Records {
		out.Records = append(out.Records, recordJSON{
			FileName: r.FileName,
			Code:     r.Code,
			Type:     r.Value.Kind().String(),
			Value:    jsonValue(r.Value),
		})
	}
	for _, warn := range s.Warnings {
		out.Warnings = append(out.Warnings, warn.Error())
	}
	for _, c := range s.Corruptions {
		out.Corruptions = append(out.Corruptions, c.String())
	}
	if free {
		out.FreeLists = make(map[string][]uint32)
		for order := 0; order < 32; order++ {
			if offsets := s.FreeList(order); len(offsets) > 0 {
				out.FreeLists[fmt.Sprintf("%d", order)] = offsets
			}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// jsonValue maps a typed value to its natural JSON representation.
// Opaque byte payloads become hex strings rather than base64 to stay
// grep-friendly.
func jsonValue(v dsstore.Value) any {
	switch t := v.(type) {
	case dsstore.Long:
		return int32(t)
	case dsstore.Shor:
		return int16(t)
	case dsstore.Bool:
		return bool(t)
	case dsstore.Blob:
		return fmt.Sprintf("%x", []byte(t))
	case dsstore.TypeTag:
		return string(t)
	case dsstore.UStr:
		return string(t)
	case dsstore.Comp:
		return t.String()
	case dsstore.DUtc:
		return t.Time()
	default:
		return v.String()
	}
}
