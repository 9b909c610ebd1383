// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
)

//go:embed shaders/world_common.wgsl
var worldCommonSource string

//go:embed shaders/brush.wgsl
var brushBody string

//go:embed shaders/alias.wgsl
var aliasBody string

//go:embed shaders/sprite.wgsl
var spriteBody string

//go:embed shaders/particle.wgsl
var particleBody string

//go:embed shaders/fullscreen.wgsl
var fullscreenSource string

//go:embed shaders/deferred.wgsl
var deferredBody string

//go:embed shaders/postprocess.wgsl
var postprocessBody string

//go:embed shaders/blit.wgsl
var blitBody string

//go:embed shaders/quad.wgsl
var quadShaderSource string

//go:embed shaders/glyph.wgsl
var glyphShaderSource string

func worldShader(body string) string { return worldCommonSource + "\n" + body }

func fullscreenShader(body string) string { return fullscreenSource + "\n" + body }

// deferredShader returns the lighting shader for sampleCount. Multisampled
// G-buffers are read through multisampled texture types. textureLoad takes
// a level for single-sample textures and a sample index otherwise, so
// index 0 works for both.
func deferredShader(sampleCount uint32) string {
	src := fullscreenShader(deferredBody)
	if sampleCount > 1 {
		src = strings.ReplaceAll(src, "texture_2d<f32>", "texture_multisampled_2d<f32>")
		src = strings.ReplaceAll(src, "texture_depth_2d", "texture_depth_multisampled_2d")
	}
	return src
}

// Shader is a named WGSL program.
type Shader struct {
	Name   string
	Source string
}

// Shaders returns every WGSL program the pipelines compile, including both
// deferred variants.
func Shaders() []Shader {
	return []Shader{
		{"brush", worldShader(brushBody)},
		{"alias", worldShader(aliasBody)},
		{"sprite", worldShader(spriteBody)},
		{"particle", worldShader(particleBody)},
		{"deferred", deferredShader(1)},
		{"deferred_msaa", deferredShader(4)},
		{"postprocess", fullscreenShader(postprocessBody)},
		{"blit", fullscreenShader(blitBody)},
		{"quad", quadShaderSource},
		{"glyph", glyphShaderSource},
	}
}

// ValidateShaders compiles every program with naga and reports the first
// failure.
func ValidateShaders() error {
	for _, s := range Shaders() {
		if _, err := naga.Compile(s.Source); err != nil {
			return fmt.Errorf("shader %s: %w", s.Name, err)
		}
	}
	return nil
}
