// Package testing puts the process into test mode as an import side
// effect. Test files blank-import it so binaries built from cmd/ refuse
// to start real servers during `go test ./...`.
package testing

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		_ = os.Setenv("SECUREGATE_TEST_MODE", "1")
		if os.Getenv("TOKEN_SECRET") == "" {
			_ = os.Setenv("TOKEN_SECRET", "test-secret")
		}
	})
}
