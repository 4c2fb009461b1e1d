// Package main provides the dynmem CLI.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const version = "v0.1.0-dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "dynmem"
	app.Usage = "Exercise heap and mapped matrix buffers"
	app.Version = version

	app.Commands = []cli.Command{
		{
			Name:  "version",
			Usage: "Show version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "dynmem %s\n", version)
				return nil
			},
		},
		{
			Name:  "probe",
			Usage: "Allocate, fill, verify and release shaped views frame by frame",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "config,c", Usage: "YAML config file"},
				cli.StringFlag{Name: "mode,m", Usage: "Override allocation mode (heap or mapped)"},
				cli.IntFlag{Name: "size,s", Value: 64, Usage: "Square view extent"},
				cli.IntFlag{Name: "frames,f", Value: 30, Usage: "Number of frames"},
				cli.BoolFlag{Name: "noTable", Usage: "Render pure text instead of table"},
			},
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig(c.String("config"), c.String("mode"))
				if err != nil {
					return err
				}
				report, err := runProbe(cfg, c.Int("size"), c.Int("frames"))
				if err != nil {
					return err
				}
				if c.Bool("noTable") {
					report.printPlain(c.App.Writer)
				} else {
					report.printTable(c.App.Writer)
				}
				return report.leaks
			},
		},
	}
	return app
}
