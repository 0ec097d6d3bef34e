// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command evtxdump parses a Windows EVTX event log file and prints its
// records as XML or JSON.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saferwall/evtx"
)

var (
	asJSON      bool
	separate    bool
	indent      bool
	indentWidth uint8
	anomalies   bool
	workers     int
)

func settingsFromFlags() evtx.Settings {
	s := evtx.DefaultSettings()
	s.SeparateJSONAttributes = separate
	s.Indent = indent
	s.IndentWidth = indentWidth
	s.NumThreads = uint32(workers)
	return s
}

func dumpFile(path string) error {
	settings := settingsFromFlags()
	p, err := evtx.Open(path, &settings)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer p.Close()

	if anomalies {
		for _, a := range p.Anomalies {
			fmt.Fprintf(os.Stderr, "anomaly: %s\n", a)
		}
	}

	render := func(rec *evtx.Record) error {
		var buf bytes.Buffer
		var err error
		if asJSON {
			err = rec.WriteJSON(&buf, settings.JSONOptions())
		} else {
			err = rec.WriteXML(&buf)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "record %d: %v\n", rec.Header.RecordID, err)
			return nil
		}
		fmt.Println(buf.String())
		return nil
	}

	if workers > 0 {
		return evtx.ParallelWalk(context.Background(), p, workers, render)
	}

	chunks := p.Chunks()
	for {
		chunk, err := chunks.Next()
		if err != nil {
			break
		}
		if anomalies {
			for _, a := range chunk.Anomalies {
				fmt.Fprintf(os.Stderr, "chunk %d anomaly: %s\n", chunk.Index, a)
			}
		}
		records := chunk.Records()
		for {
			rec, err := records.Next()
			if err != nil {
				break
			}
			render(rec)
		}
	}
	return nil
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "evtxdump",
		Short: "A Windows EVTX event log parser",
		Long:  "A Windows EVTX event log parser built for forensics and log analysis by Saferwall",
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("evtxdump version 0.0.1")
		},
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump [file...]",
		Short: "Dump the records of one or more EVTX files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if err := dumpFile(path); err != nil {
					return err
				}
			}
			return nil
		},
	}
	dumpCmd.Flags().BoolVarP(&asJSON, "json", "j", false, "render records as JSON instead of XML")
	dumpCmd.Flags().BoolVarP(&separate, "separate-attributes", "s", false, "nest JSON attributes under #attributes")
	dumpCmd.Flags().BoolVarP(&indent, "indent", "i", false, "indent JSON output")
	dumpCmd.Flags().Uint8Var(&indentWidth, "indent-width", 2, "spaces per JSON indent level, when --indent is set")
	dumpCmd.Flags().BoolVarP(&anomalies, "anomalies", "a", false, "print structural anomalies to stderr")
	dumpCmd.Flags().IntVarP(&workers, "workers", "w", 0, "fan out across this many goroutines via ParallelWalk (0: sequential)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
