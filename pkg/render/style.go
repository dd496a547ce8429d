package render

import (
	"strings"
	"sync"

	"github.com/vango-dev/ssg/pkg/vdom"
)

// collectAttr marks a <style> element whose CSS is hoisted by a StyleSheet.
const collectAttr = "data-ssg-collect"

const styleSinkProp = "_styleSink"

// StyleCollector gathers styles emitted while an app renders.
type StyleCollector interface {
	// Collect wraps app so styles rendered inside it are captured.
	Collect(app *vdom.VNode) *vdom.VNode
	// StyleTag returns the collected styles as markup, or "" when none.
	StyleTag() string
}

// CollectedStyle creates a <style> element that a StyleSheet will hoist.
// Outside a collector it renders inline.
func CollectedStyle(css string) *vdom.VNode {
	return vdom.Style(vdom.AttrOf(collectAttr, true), vdom.Raw(css))
}

// StyleSheet is the default StyleCollector. Identical rules are kept once.
type StyleSheet struct {
	mu    sync.Mutex
	rules []string
	seen  map[string]bool
}

// NewStyleSheet creates an empty StyleSheet.
func NewStyleSheet() *StyleSheet {
	return &StyleSheet{seen: make(map[string]bool)}
}

// Collect implements StyleCollector.
func (s *StyleSheet) Collect(app *vdom.VNode) *vdom.VNode {
	return &vdom.VNode{
		Kind:     vdom.KindFragment,
		Props:    vdom.Props{styleSinkProp: s},
		Children: []*vdom.VNode{app},
	}
}

func (s *StyleSheet) add(css string) {
	css = strings.TrimSpace(css)
	if css == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[css] {
		return
	}
	s.seen[css] = true
	s.rules = append(s.rules, css)
}

// StyleTag implements StyleCollector.
func (s *StyleSheet) StyleTag() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rules) == 0 {
		return ""
	}
	return `<style data-ssg-styles>` + strings.Join(s.rules, "\n") + `</style>`
}
