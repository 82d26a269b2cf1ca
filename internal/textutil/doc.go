// Package textutil contains small string helpers shared by the dialog and
// display layers: AppleScript string escaping and menu label truncation.
package textutil
