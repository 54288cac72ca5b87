package main

import (
	"context"
	"fmt"
	"os"

	"github.com/oisee/nemu32/internal/cache"
	"github.com/oisee/nemu32/internal/dram"
	"github.com/oisee/nemu32/internal/elfload"
	"github.com/oisee/nemu32/internal/iexec"
	"github.com/oisee/nemu32/internal/membus"
	"github.com/oisee/nemu32/internal/monitor"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nemu32",
		Short: "nemu32 — a user-space IA-32 subset emulator",
	}

	var memSize uint32
	var batch string

	runCmd := &cobra.Command{
		Use:   "run <image>",
		Short: "Load an ELF32 executable and start the monitor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image := args[0]
			if err := elfload.Stat(image); err != nil {
				return fmt.Errorf("nemu32: %w", err)
			}

			mem := dram.New(memSize)
			hier := cache.New(mem)
			bus := membus.New(hier)

			img, err := elfload.Load(image, mem)
			if err != nil {
				return fmt.Errorf("nemu32: %w", err)
			}

			machine := iexec.New(img.Entry, bus)

			var in *os.File
			if batch != "" {
				f, err := os.Open(batch)
				if err != nil {
					return fmt.Errorf("nemu32: opening batch script %s: %w", batch, err)
				}
				defer f.Close()
				in = f
			} else {
				in = os.Stdin
			}

			mon := monitor.New(machine, img, in, os.Stdout)
			return mon.Run(context.Background(), int(in.Fd()))
		},
	}

	runCmd.Flags().Uint32Var(&memSize, "mem-size", 64*1024*1024, "guest DRAM size in bytes")
	runCmd.Flags().StringVar(&batch, "batch", "", "read monitor commands from this file instead of stdin")

	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
