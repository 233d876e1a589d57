package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/math-agent/backend/internal/source"
)

func webRef(title, url string) source.Reference {
	return source.Reference{Title: title, URL: url, Origin: source.OriginWebSearch}
}

func kbRef(title, url string) source.Reference {
	return source.Reference{Title: title, URL: url, Origin: source.OriginKnowledgeStore}
}

func TestAssembleMixesWebAndKnowledge(t *testing.T) {
	a := NewAssembler()

	refs := a.Assemble(
		[]source.Reference{kbRef("Algebra Basics", "https://example.org/algebra")},
		[]source.Reference{
			webRef("Khan Academy", "https://khanacademy.org/algebra"),
			webRef("Paul's Notes", "https://tutorial.math.lamar.edu"),
			webRef("Extra", "https://example.com/extra"),
		},
	)

	require.Len(t, refs, TargetCount)
	assert.Equal(t, source.OriginWebSearch, refs[0].Origin)
	assert.Equal(t, source.OriginWebSearch, refs[1].Origin)
	assert.Equal(t, "Algebra Basics", refs[2].Title)
}

func TestAssembleKnowledgeOnly(t *testing.T) {
	a := NewAssembler()

	refs := a.Assemble([]source.Reference{
		kbRef("A", "https://example.org/a"),
		kbRef("B", "https://example.org/b"),
		kbRef("C", "https://example.org/c"),
		kbRef("D", "https://example.org/d"),
	}, nil)

	require.Len(t, refs, TargetCount)
	assert.Equal(t, "A", refs[0].Title)
	assert.Equal(t, "C", refs[2].Title)
}

func TestAssemblePadsWithPlaceholder(t *testing.T) {
	a := NewAssembler()

	refs := a.Assemble(nil, nil)

	require.Len(t, refs, TargetCount)
	assert.Equal(t, Placeholder.Title, refs[0].Title)
	// Padding entries stay distinct so dedupe-sensitive consumers keep three.
	assert.NotEqual(t, refs[0].Title, refs[1].Title)
	assert.NotEqual(t, refs[1].Title, refs[2].Title)
}

func TestAssembleDeduplicatesByNormalizedKey(t *testing.T) {
	a := NewAssembler()

	refs := a.Assemble(
		[]source.Reference{kbRef("Khan Academy", "https://khanacademy.org/algebra/")},
		[]source.Reference{
			webRef("Khan Academy", "https://khanacademy.org/algebra"),
			webRef("khan academy", "HTTPS://khanacademy.org/algebra"),
			webRef("Paul's Notes", "https://tutorial.math.lamar.edu"),
		},
	)

	require.Len(t, refs, TargetCount)
	assert.Equal(t, "Khan Academy", refs[0].Title)
	assert.Equal(t, "Paul's Notes", refs[1].Title)
	// The knowledge entry duplicates the first web entry, so a placeholder
	// completes the list instead.
	assert.Equal(t, Placeholder.Title, refs[2].Title)
}

func TestAssembleSingleWebReference(t *testing.T) {
	a := NewAssembler()

	refs := a.Assemble(
		[]source.Reference{kbRef("Calculus Notes", "https://example.org/calc")},
		[]source.Reference{webRef("Wolfram", "https://wolframalpha.com")},
	)

	require.Len(t, refs, TargetCount)
	assert.Equal(t, "Wolfram", refs[0].Title)
	assert.Equal(t, "Calculus Notes", refs[1].Title)
	assert.Equal(t, Placeholder.Title, refs[2].Title)
}
