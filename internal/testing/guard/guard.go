// Package guard forces test mode on for any test binary that imports
// it, keeping main() from booting real servers under `go test ./...`.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("TEMPORA_TEST_MODE") == "" {
			_ = os.Setenv("TEMPORA_TEST_MODE", "1")
		}
	})
}
