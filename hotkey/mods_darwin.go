//go:build darwin

package hotkey

import "golang.design/x/hotkey"

const modCmdOrCtrl = hotkey.ModCmd
