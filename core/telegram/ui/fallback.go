// Package ui holds presentation hooks shared by the routers.
package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider answers updates no route claimed: free text, documents
// and presses on buttons with an unknown key.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnknownDocument() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}
