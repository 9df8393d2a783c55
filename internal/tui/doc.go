// Package tui implements the full-screen control panel started by
// 'cocoro tui'.
//
// The panel has two screens. The device list loads every device through
// the cloud client and supports filtering. The dashboard shows one device's
// decoded status and queues commands from single-key bindings; queued
// commands are only submitted when the user applies them.
//
// Both screens render through RenderApplicationContainer, which adds the
// header and a context-sensitive help footer built with bubbles/help.
//
// Cloud calls run as tea.Cmds. The dashboard caches its rendered device text
// and ignores input while a call is in flight, so View never reads a device
// that a request is mutating.
package tui
