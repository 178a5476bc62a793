package main

import (
	_ "embed"

	"pkt.systems/tweenly/internal/scene"
)

//go:embed assets/demo.yaml
var demoScene []byte

// loadScene reads the script at path, or the bundled demo when path is empty.
func loadScene(path string) (*scene.Script, error) {
	if path == "" {
		return scene.Parse(demoScene)
	}
	return scene.Read(path)
}
