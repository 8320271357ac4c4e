// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command pcs-shell provides an interactive shell to inspect running
// PCS lanes through their status ports.
package main // import "github.com/go-lpc/pcs/cmd/pcs-shell"

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-lpc/pcs/baser"
	"github.com/peterh/liner"
)

func main() {
	var (
		addr = flag.String("addr", "localhost:8899", "[address]:port of the lane status port")
	)

	log.SetPrefix("pcs-shell: ")
	log.SetFlags(0)

	flag.Parse()

	err := run(*addr, os.Stdout)
	if err != nil {
		log.Fatalf("could not run pcs-shell: %+v", err)
	}
}

func run(addr string, w io.Writer) error {
	term := liner.NewLiner()
	defer term.Close()

	term.SetCtrlCAborts(true)

	history := filepath.Join(os.TempDir(), ".pcs_shell_history")
	if f, err := os.Open(history); err == nil {
		_, _ = term.ReadHistory(f)
		f.Close()
	}
	defer func() {
		f, err := os.Create(history)
		if err != nil {
			log.Printf("could not save history: %+v", err)
			return
		}
		defer f.Close()
		_, _ = term.WriteHistory(f)
	}()

loop:
	for {
		line, err := term.Prompt("pcs> ")
		if err != nil {
			if err == io.EOF || err == liner.ErrPromptAborted {
				fmt.Fprintf(w, "\n")
				break loop
			}
			return fmt.Errorf("could not read line: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		term.AppendHistory(line)

		args := strings.Split(line, " ")
		switch args[0] {
		case "status":
			dst := addr
			if len(args) > 1 {
				dst = args[1]
			}
			err = status(w, dst)
			if err != nil {
				log.Printf("%+v", err)
			}
		case "help":
			usage(w)
		case "quit", "exit":
			break loop
		default:
			log.Printf("unknown command %q", args[0])
			usage(w)
		}
	}

	return nil
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `commands:
 status [ADDR]   display the link status of a lane
 help            display this help
 quit            quit pcs-shell
`)
}

func status(w io.Writer, addr string) error {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("could not dial %q: %w", addr, err)
	}
	defer conn.Close()

	var st baser.LinkStatus
	err = json.NewDecoder(conn).Decode(&st)
	if err != nil {
		return fmt.Errorf("could not decode status from %q: %w", addr, err)
	}

	fmt.Fprintf(w, "lane %q:\n", addr)
	fmt.Fprintf(w, " lock:           %v\n", st.Lock)
	fmt.Fprintf(w, " hi-ber:         %v\n", st.HiBER)
	fmt.Fprintf(w, " link-up:        %v\n", st.LinkUp)
	fmt.Fprintf(w, " BER count:      %d\n", st.BERCount)
	fmt.Fprintf(w, " errored blocks: %d\n", st.ErroredBlocks)
	fmt.Fprintf(w, " invalid hdrs:   %d\n", st.InvalidHdrs)
	fmt.Fprintf(w, " slips:          %d\n", st.Slips)
	return nil
}
