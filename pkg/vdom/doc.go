// Package vdom provides the UI element tree that pages are rendered from.
//
// VNode is the fundamental building block representing elements, text,
// fragments, components, raw HTML and head tags. Attributes are built with
// Attr helpers and passed to element factories alongside children:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    P(Text("Content")),
//	)
//
// # Head Tags
//
// Components declare document head content with HeadTags, HTMLAttributes and
// BodyAttributes. These nodes produce no inline markup; the renderer hands
// them to a head collector so the page shell can place them in <head>, on
// <html> and on <body>.
package vdom
