package citation

import (
	"fmt"
	"strings"

	"github.com/math-agent/backend/internal/source"
)

// TargetCount is the fixed number of references attached to every answer.
const TargetCount = 3

// Placeholder fills the reference list when the upstream adapters supplied
// fewer than TargetCount distinct sources.
var Placeholder = source.Reference{
	Title:  "Mathematics Reference",
	URL:    "https://mathworld.wolfram.com",
	Origin: source.OriginKnowledgeStore,
}

// Assembler merges knowledge-store and web references into a fixed-size,
// deduplicated citation list.
type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble returns exactly TargetCount references. When web references are
// present the mix is two web entries followed by one knowledge-store entry;
// otherwise knowledge-store references fill the list. Duplicates are removed
// by normalized URL and title, and placeholders pad any shortfall.
func (a *Assembler) Assemble(kb, web []source.Reference) []source.Reference {
	kb = dedupe(kb)
	web = dedupe(web)

	out := make([]source.Reference, 0, TargetCount)
	if len(web) > 0 {
		for _, ref := range web {
			if len(out) == 2 {
				break
			}
			out = append(out, ref)
		}
		for _, ref := range kb {
			if len(out) == TargetCount {
				break
			}
			if !contains(out, ref) {
				out = append(out, ref)
			}
		}
	} else {
		for _, ref := range kb {
			if len(out) == TargetCount {
				break
			}
			out = append(out, ref)
		}
	}

	for len(out) < TargetCount {
		if contains(out, Placeholder) {
			out = append(out, numberedPlaceholder(len(out)+1))
			continue
		}
		out = append(out, Placeholder)
	}
	return out
}

func numberedPlaceholder(n int) source.Reference {
	ref := Placeholder
	ref.Title = fmt.Sprintf("%s %d", ref.Title, n)
	return ref
}

func dedupe(refs []source.Reference) []source.Reference {
	seen := make(map[string]struct{}, len(refs))
	out := refs[:0:0]
	for _, ref := range refs {
		k := key(ref)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, ref)
	}
	return out
}

func contains(refs []source.Reference, ref source.Reference) bool {
	k := key(ref)
	for _, r := range refs {
		if key(r) == k {
			return true
		}
	}
	return false
}

func key(ref source.Reference) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(ref.URL), "/")) +
		"|" + strings.ToLower(strings.TrimSpace(ref.Title))
}
