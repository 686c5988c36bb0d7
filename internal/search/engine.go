// Package search implements the sidebar filter as a pure function over a
// navigation index. A query produces an explicit render state (visibility,
// highlighted labels, match count, result message) instead of mutating any
// document, so the same engine serves the preview API and the tests.
package search

import (
	"fmt"
	"strings"

	"github.com/protodoc/protodoc/internal/navtree"
)

// Engine answers filter queries against one immutable navigation index.
type Engine struct {
	idx *navtree.Index
}

// New creates an engine over the given index.
func New(idx *navtree.Index) *Engine {
	return &Engine{idx: idx}
}

// EntryState is the render decision for one navigation entry.
type EntryState struct {
	Entry   navtree.Entry `json:"entry"`
	Visible bool          `json:"visible"`
	Match   bool          `json:"match"`
	Label   string        `json:"label"`
}

// Result is the full render state for one query.
type Result struct {
	Entries         []EntryState `json:"entries"`
	ServicesVisible bool         `json:"services_visible"`
	TypesVisible    bool         `json:"types_visible"`
	Matches         int          `json:"matches"`
	Message         string       `json:"message"`
}

// Query evaluates the filter for q and returns the resulting render state.
//
// The query is trimmed and compared case-insensitively as a literal
// substring. An empty query shows everything with plain labels and no
// message. A service is visible when it matches directly or any of its
// methods does; a method is additionally visible, unhighlighted, when its
// owning service matches directly. Types are visible only on a direct
// match. The match count includes direct matches only.
func (e *Engine) Query(q string) Result {
	query := strings.ToLower(strings.TrimSpace(q))
	entries := e.idx.Entries()
	result := Result{Entries: make([]EntryState, len(entries))}

	if query == "" {
		for i, entry := range entries {
			result.Entries[i] = EntryState{Entry: entry, Visible: true, Label: escapeHTML(entry.Text)}
			switch entry.Kind {
			case navtree.KindService, navtree.KindMethod:
				result.ServicesVisible = true
			case navtree.KindType:
				result.TypesVisible = true
			}
		}
		return result
	}

	direct := make([]bool, len(entries))
	serviceDirect := map[string]bool{}
	serviceChildMatch := map[string]bool{}
	for i, entry := range entries {
		direct[i] = strings.Contains(strings.ToLower(entry.Text), query)
		if direct[i] {
			result.Matches++
			switch entry.Kind {
			case navtree.KindService:
				serviceDirect[entry.Text] = true
			case navtree.KindMethod:
				serviceChildMatch[entry.ParentService] = true
			}
		}
	}

	for i, entry := range entries {
		state := EntryState{Entry: entry, Match: direct[i]}
		switch entry.Kind {
		case navtree.KindService:
			state.Visible = direct[i] || serviceChildMatch[entry.Text]
		case navtree.KindMethod:
			state.Visible = direct[i] || serviceDirect[entry.ParentService]
		case navtree.KindType:
			state.Visible = direct[i]
		}

		// Only visible direct matches carry highlight markup; hidden and
		// promoted entries keep plain labels.
		if state.Visible && state.Match {
			state.Label = highlightLabel(entry.Text, query)
		} else {
			state.Label = escapeHTML(entry.Text)
		}

		if state.Visible {
			switch entry.Kind {
			case navtree.KindService, navtree.KindMethod:
				result.ServicesVisible = true
			case navtree.KindType:
				result.TypesVisible = true
			}
		}
		result.Entries[i] = state
	}

	switch result.Matches {
	case 0:
		result.Message = "No results found"
	case 1:
		result.Message = "1 result found"
	default:
		result.Message = fmt.Sprintf("%d results found", result.Matches)
	}
	return result
}
