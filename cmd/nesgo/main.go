// Command nesgo runs or steps through an iNES ROM on the 6502 core.
package main

import (
	"flag"
	"fmt"
	"os"

	"nesgo/cartridge"
	"nesgo/cpu"
	"nesgo/mem"
	"nesgo/neserr"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: nesgo <emu|dbg> FILENAME")
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		usage()
	}
	mode, path := args[0], args[1]

	raw, err := os.ReadFile(path)
	if err != nil {
		fail(neserr.NewIo(path, err))
	}

	cart, err := cartridge.New(raw)
	if err != nil {
		fail(err)
	}

	c := &cpu.Cpu{Bus: mem.New(cart)}
	c.Reset()

	switch mode {
	case "emu":
		if err := c.Run(); err != nil {
			fail(err)
		}
	case "dbg":
		dbg := cpu.NewDebugger(c, os.Stdin, os.Stdout)
		if err := dbg.Run(); err != nil {
			fail(err)
		}
	default:
		usage()
	}
}

// fail maps the typed errors from neserr onto distinct exit codes, so a
// calling script can tell a bad ROM from a runtime bus fault.
func fail(err error) {
	fmt.Fprintln(os.Stderr, "nesgo:", err)
	switch err.(type) {
	case *neserr.IoError:
		os.Exit(1)
	case *neserr.ParseError:
		os.Exit(2)
	case *neserr.DecodeError:
		os.Exit(3)
	case *neserr.BusError:
		os.Exit(4)
	default:
		os.Exit(1)
	}
}
