package common

import "github.com/inconshreveable/log15"

var glog = log15.New("module", "goroutine")

// Go runs fn in a new goroutine and logs a panic under name before
// re-raising it.
func Go(name string, fn func()) {
	go func() {
		defer func() {
			if err := recover(); err != nil {
				glog.Error("panic", "goroutine", name, "err", err)
				panic(err)
			}
		}()
		fn()
	}()
}
