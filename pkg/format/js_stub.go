//go:build !js_eval

package format

const jsAvailable = false

func newJSBackend(*Helpers) backend {
	return nil
}
