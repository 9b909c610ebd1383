//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default runs the shader check and the tests.
var Default = All

type Build mg.Namespace

// Viewer builds the deferredview command into bin/.
func (Build) Viewer() error {
	return sh.RunV("go", "build", "-o", "bin/deferredview", "./cmd/deferredview")
}

// Shaders compiles every WGSL program with naga.
func (Build) Shaders() error {
	return sh.RunV("go", "run", "./cmd/deferredview", "-check-shaders")
}

type Test mg.Namespace

// Unit runs the package tests.
func (Test) Unit() error {
	return sh.RunV("go", "test", "./...")
}

// Race runs the package tests with the race detector.
func (Test) Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Smoke renders a few frames on the noop backend.
func (Test) Smoke() error {
	mg.Deps(Build.Viewer)
	return sh.RunV("bin/deferredview", "-noop", "-frames", "20")
}

// All checks the shaders, runs the tests and the smoke run.
func All() {
	mg.SerialDeps(Build.Shaders, Test.Unit, Test.Smoke)
	fmt.Println("all checks passed")
}
