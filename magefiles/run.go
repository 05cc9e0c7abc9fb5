//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the demo in a window.
func (Run) Demo() error {
	fmt.Println("Run demo...")
	if _, err := executeCmd("go", withArgs("run", ".", "-window"), withStream()); err != nil {
		return err
	}
	return nil
}

// Renders a few seconds of the demo headless and writes the last frame to capture.webp.
func (Run) Capture() error {
	mg.Deps(Build.Demo)
	if _, err := executeCmd("bin/anima-blend", withArgs("-frames", "240", "-capture", "capture.webp"), withStream()); err != nil {
		return err
	}
	return nil
}
