//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Extract builds the CLI and writes Rol_Procedimentos.csv and its ZIP from
// the default annex PDF.
func Extract() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "extract")
}

// Refresh downloads the annexes and re-extracts the table.
func Refresh() error {
	mg.SerialDeps(Fetch, Extract)
	return nil
}
