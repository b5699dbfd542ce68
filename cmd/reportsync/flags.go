package main

import (
	"github.com/spf13/pflag"
)

// bind makes a flag override the config key when it is set on the command line.
func (a *app) bind(key string, flag *pflag.Flag) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
