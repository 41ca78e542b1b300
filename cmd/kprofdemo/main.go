// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command kprofdemo measures a synthetic workload with kprof and prints
// the resulting counter report. It is a usage example, not a benchmarking
// harness: it runs the workload exactly once and does not shell out to an
// external command, average over repetitions, or emit CSV.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/kprof/kprof"
	"github.com/kprof/kprof/internal/klog"
)

func main() {
	app := cli.NewApp()
	app.Name = "kprofdemo"
	app.Usage = "measure a synthetic workload with kprof"
	app.Version = "0.1.0"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "conf",
			Usage: "inline counter spec, same dialect as KPROF_COUNTER_CONF",
		},
		cli.StringFlag{
			Name:  "file",
			Usage: "CSV counter file, same dialect as KPROF_COUNTER_FILE",
		},
		cli.IntFlag{
			Name:  "n",
			Usage: "size of the synthetic workload",
			Value: 50_000_000,
		},
		cli.BoolFlag{
			Name:  "correct-overhead",
			Usage: "subtract an empty-region overhead measurement from the report",
		},
		cli.BoolFlag{
			Name:  "json",
			Usage: "log in JSON instead of text",
		},
	}

	app.Before = func(c *cli.Context) error {
		if c.Bool("json") {
			logrus.SetFormatter(&logrus.JSONFormatter{})
		} else {
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		}
		klog.SetLogger(logrus.StandardLogger())
		return nil
	}

	app.Action = func(c *cli.Context) error {
		session, err := openSession(c)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		defer session.Destroy()

		if err := session.Start(); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		workload(c.Int("n"))
		if err := session.Stop(); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}

		report, err := session.Report(c.Bool("correct-overhead"))
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		for _, e := range report.Entries {
			fmt.Printf("%-20s %d\n", e.Label, e.Value)
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatalf("kprofdemo: %v", err)
	}
}

func openSession(c *cli.Context) (*kprof.Session, error) {
	switch {
	case c.String("file") != "":
		return kprof.NewSessionFromFile(c.String("file"))
	case c.String("conf") != "":
		return kprof.NewSessionFromConfig(c.String("conf"))
	default:
		return kprof.NewSessionFromDefault()
	}
}

// workload is a synthetic region with both compute and allocation, chosen
// so the default counter set (cycles, instructions, cache traffic, page
// faults) all report something nonzero.
func workload(n int) {
	sum := 0
	buf := make([]int, 0, 1024)
	for i := 0; i < n; i++ {
		sum += i * i
		if i%4096 == 0 {
			buf = append(buf[:0], make([]int, 1024)...)
		}
	}
	_ = sum
}
