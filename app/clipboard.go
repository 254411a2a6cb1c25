package app

import (
	aclipboard "github.com/atotto/clipboard"
	"golang.design/x/clipboard"
)

var clipboardReady bool

// SetClipboardReady records whether golang.design clipboard.Init
// succeeded at startup. When it did not (headless X, missing CGO
// deps), copies fall back to the atotto implementation.
func SetClipboardReady(ok bool) {
	clipboardReady = ok
}

func copyText(text string) {
	if clipboardReady {
		clipboard.Write(clipboard.FmtText, []byte(text))
		return
	}
	_ = aclipboard.WriteAll(text)
}
