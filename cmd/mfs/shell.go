package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mit-pdos/go-mfs/common"
	"github.com/mit-pdos/go-mfs/mfs"
)

var errUsage = errors.New("wrong arguments")

var usage = map[string]string{
	"createfs": "createfs <image>",
	"open":     "open <image>",
	"close":    "close",
	"savefs":   "savefs",
	"put":      "put <file>",
	"get":      "get <file> [newfile]",
	"del":      "del <file>",
	"undel":    "undel <file>",
	"list":     "list [-h]",
	"df":       "df",
	"attrib":   "attrib [+|-][r|h] <file>",
	"cat":      "cat <file>",
	"check":    "check",
}

// run reads commands from in until EOF or quit/exit.
func run(s *mfs.Session, in io.Reader, out io.Writer) {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "mfs> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return
		}
		args := strings.Fields(sc.Text())
		if len(args) == 0 {
			continue
		}
		cmd := strings.ToLower(args[0])
		if cmd == "quit" || cmd == "exit" {
			return
		}
		err := execute(s, cmd, args[1:], out)
		if errors.Is(err, errUsage) {
			fmt.Fprintf(out, "%s error: expected `%s`\n", cmd, usage[cmd])
		} else if err != nil {
			fmt.Fprintf(out, "%s error: %v\n", cmd, err)
		}
	}
}

func execute(s *mfs.Session, cmd string, args []string, out io.Writer) error {
	arity := func(min, max int) error {
		if len(args) < min || len(args) > max {
			return errUsage
		}
		return nil
	}
	switch cmd {
	case "createfs":
		if err := arity(1, 1); err != nil {
			return err
		}
		return s.CreateImage(args[0])
	case "open":
		if err := arity(1, 1); err != nil {
			return err
		}
		return s.Mount(args[0])
	case "close":
		if err := arity(0, 0); err != nil {
			return err
		}
		return s.Unmount()
	case "savefs":
		if err := arity(0, 0); err != nil {
			return err
		}
		return s.Save()
	case "put":
		if err := arity(1, 1); err != nil {
			return err
		}
		return s.Put(args[0])
	case "get":
		if err := arity(1, 2); err != nil {
			return err
		}
		dest := filepath.Base(args[0])
		if len(args) == 2 {
			dest = args[1]
		}
		return s.Get(args[0], dest)
	case "del":
		if err := arity(1, 1); err != nil {
			return err
		}
		return s.Delete(args[0])
	case "undel":
		if err := arity(1, 1); err != nil {
			return err
		}
		return s.Undelete(args[0])
	case "list":
		if err := arity(0, 1); err != nil {
			return err
		}
		if len(args) == 1 && args[0] != "-h" {
			return errUsage
		}
		infos, err := s.List(len(args) == 1)
		for _, fi := range infos {
			fmt.Fprintln(out, fi.String())
		}
		if err == nil && len(infos) == 0 && s.Mounted() {
			fmt.Fprintln(out, "No files found.")
		}
		return err
	case "df":
		if err := arity(0, 0); err != nil {
			return err
		}
		n, err := s.FreeBytes()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d bytes free.\n", n)
		return nil
	case "attrib":
		if err := arity(2, 2); err != nil {
			return err
		}
		flag, enabled, err := parseAttrib(args[0])
		if err != nil {
			return err
		}
		return s.SetAttribute(args[1], flag, enabled)
	case "cat":
		if err := arity(1, 1); err != nil {
			return err
		}
		err := s.Cat(args[0], out)
		fmt.Fprintln(out)
		return err
	case "check":
		if err := arity(0, 0); err != nil {
			return err
		}
		err := s.Check()
		if err == nil {
			fmt.Fprintln(out, "ok")
		}
		return err
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func parseAttrib(s string) (common.Attr, bool, error) {
	if len(s) != 2 || (s[0] != '+' && s[0] != '-') {
		return 0, false, errUsage
	}
	enabled := s[0] == '+'
	switch s[1] {
	case 'r', 'R':
		return common.AttrReadOnly, enabled, nil
	case 'h', 'H':
		return common.AttrHidden, enabled, nil
	}
	return 0, false, errUsage
}
