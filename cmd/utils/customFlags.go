package utils

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vitelabs/go-krypt/common"
)

type DirectoryString struct {
	Value string
}

func (d *DirectoryString) String() string {
	return d.Value
}

func (d *DirectoryString) Set(value string) error {
	d.Value = expandPath(value)
	return nil
}

// Custom cli.Flag type which expand the received string to an absolute path.
// e.g. ~/.gkrypt -> /home/username/.gkrypt
type DirectoryFlag struct {
	Name  string
	Value DirectoryString
	Usage string
}

func (f DirectoryFlag) String() string {
	fmtString := "%s %v\t%v"
	if len(f.Value.Value) > 0 {
		fmtString = "%s \"%v\"\t%v"
	}
	return fmt.Sprintf(fmtString, prefixedNames(f.Name), f.Value.Value, f.Usage)
}

func eachName(longName string, fn func(string)) {
	for _, name := range strings.Split(longName, ",") {
		fn(strings.TrimSpace(name))
	}
}

// called by cli library, adds variable to flag set for parsing.
func (f DirectoryFlag) Apply(set *flag.FlagSet) {
	eachName(f.Name, func(name string) {
		set.Var(&f.Value, name, f.Usage)
	})
}

func (f DirectoryFlag) GetName() string {
	return f.Name
}

func prefixedNames(fullName string) (prefixed string) {
	parts := strings.Split(fullName, ",")
	for i, name := range parts {
		name = strings.TrimSpace(name)
		prefixed += prefixFor(name) + name
		if i < len(parts)-1 {
			prefixed += ", "
		}
	}
	return
}

func prefixFor(name string) string {
	if len(name) == 1 {
		return "-"
	}
	return "--"
}

func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~\\") {
		if home := common.HomeDir(); home != "" {
			p = home + p[1:]
		}
	}
	return filepath.Clean(os.ExpandEnv(p))
}
