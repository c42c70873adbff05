//go:build !debug

package callcc

func init() {
	payloadDescriber = nil
}
