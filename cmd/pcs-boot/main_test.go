// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"os/exec"
	"runtime"
	"testing"
	"time"
)

func TestRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no sleep command")
	}

	for _, tc := range []struct {
		name string
		cmds []*exec.Cmd
		mon  bool
		stop bool
	}{
		{
			name: "simple",
			cmds: []*exec.Cmd{
				exec.Command("sleep", "1"),
				exec.Command("sleep", "1"),
			},
		},
		{
			name: "simple-pmon",
			cmds: []*exec.Cmd{
				exec.Command("sleep", "1"),
				exec.Command("sleep", "1"),
			},
			mon: true,
		},
		{
			name: "simple-stop",
			cmds: []*exec.Cmd{
				exec.Command("sleep", "30"),
				exec.Command("sleep", "30"),
			},
			stop: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dir, err := os.MkdirTemp("", "pcs-boot-")
			if err != nil {
				t.Fatalf("could not create tmpdir: %+v", err)
			}
			defer os.RemoveAll(dir)

			stop := make(chan os.Signal, 1)
			if tc.stop {
				go func() {
					time.Sleep(1 * time.Second)
					stop <- os.Interrupt
				}()
			}
			err = run(tc.mon, 500*time.Millisecond, tc.cmds, dir, stop)
			if err != nil {
				t.Fatalf("could not run processes: %+v", err)
			}
		})
	}
}
