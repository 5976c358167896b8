package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `---
id: callrec-runbook
title: Call Recording Runbook
tags:
  - call-recording
  - ops
date: "2024-06-01"
authority: 0.8
---
Preamble text that belongs to no section.

# Overview

Call recording captures agent conversations.

# Remediation Steps

Restart the recorder.
Verify storage capacity.
`

func writeCorpusFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadFileParsesFrontmatter(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpusFile(t, dir, "callrec.md", sampleDoc)

	doc, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "callrec-runbook", doc.ID)
	assert.Equal(t, "Call Recording Runbook", doc.Title)
	assert.Equal(t, []string{"call-recording", "ops"}, doc.Tags)
	assert.Equal(t, "2024-06-01", doc.Date)
	assert.InDelta(t, 0.8, doc.Authority, 1e-9)

	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "OVERVIEW", doc.Sections[0].ID)
	assert.Equal(t, "Overview", doc.Sections[0].Heading)
	assert.Equal(t, "overview", doc.Sections[0].Anchor)
	assert.Equal(t, "Call recording captures agent conversations.", doc.Sections[0].Body)

	assert.Equal(t, "REMEDIAT", doc.Sections[1].ID, "slug upper-cased and cut to eight chars")
	assert.Equal(t, "remediation-steps", doc.Sections[1].Anchor)
	assert.Contains(t, doc.Sections[1].Body, "Restart the recorder.")
}

func TestLoadFileDefaultsWithoutFrontmatter(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpusFile(t, dir, "plain-notes.md", "# Only Heading\n\nSome text.\n")

	doc, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "plain-notes", doc.ID, "id falls back to the filename stem")
	assert.Equal(t, "plain-notes", doc.Title)
	assert.InDelta(t, 0.5, doc.Authority, 1e-9)
	require.Len(t, doc.Sections, 1)
}

func TestParseSectionsOffsetsNonOverlapping(t *testing.T) {
	body := "# First\n\naaa\n\n# Second\n\nbbb\n"
	sections := ParseSections(body)
	require.Len(t, sections, 2)

	assert.Less(t, sections[0].Start, sections[0].End)
	assert.LessOrEqual(t, sections[0].End, sections[1].Start-len("# Second\n"))
	assert.Equal(t, 0, sections[0].Position)
	assert.Equal(t, 1, sections[1].Position)
	assert.Equal(t, "aaa", sections[0].Body)
	assert.Equal(t, "bbb", sections[1].Body)
}

func TestParseSectionsDuplicateHeadings(t *testing.T) {
	body := "# Setup\n\nfirst\n\n# Setup\n\nsecond\n"
	sections := ParseSections(body)
	require.Len(t, sections, 2)

	assert.Equal(t, "SETUP", sections[0].ID)
	assert.Equal(t, "SETUP-2", sections[1].ID, "ids stay unique within a document")
}

func TestParseSectionsNoHeadings(t *testing.T) {
	assert.Empty(t, ParseSections("just prose, no headings at all\n"))
}

func TestLoadDirRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "a.md", "---\nid: dup\n---\n# A\n\ntext\n")
	writeCorpusFile(t, dir, "b.md", "---\nid: dup\n---\n# B\n\ntext\n")

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dup")
}

func TestLoadDirOrdersByFilename(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "b.md", "# B\n\ntext\n")
	writeCorpusFile(t, dir, "a.md", "# A\n\ntext\n")

	docs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "b", docs[1].ID)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "remediation-steps", Slugify("Remediation Steps"))
	assert.Equal(t, "faq-why-it-fails", Slugify("FAQ: Why it fails?"))
	assert.Equal(t, "", Slugify("!!!"))
}
