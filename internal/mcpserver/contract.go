package mcpserver

// NoteFormatContract describes the stored note dialect for LLM consumers
// reading or writing Moldavite notes.
const NoteFormatContract = `# Moldavite Note Format

Notes are plain Markdown files in the vault. The editor converts them to a
document tree on open and back to Markdown on save, so anything outside this
dialect may be normalised away.

## Layout

- Daily notes: ` + "`daily/YYYY-MM-DD.md`" + `
- Weekly notes: ` + "`weekly/YYYY-Www.md`" + ` (ISO week, zero padded, e.g. ` + "`2024-W03`" + `)
- Standalone notes: ` + "`notes/[folder/]Title.md`" + `; the file name is the title
- Locked notes are stored encrypted as ` + "`<name>.md.locked`" + ` and cannot be read here.

## Dialect

1. Headings, paragraphs, quotes, fenced code and plain lists use standard Markdown.
2. Tasks are ` + "`- [ ] text`" + ` and ` + "`- [x] text`" + `. A list that mixes tasks and plain
   items is split into separate lists on save.
3. Links to other notes are ` + "`[[Display Text]]`" + `. The target file is the slug of the
   text (lowercase, spaces to hyphens) plus ` + "`.md`" + `. ` + "`[[Display|target]]`" + ` is read,
   but saved back in the short form.
4. Images are inline tags so size and alignment survive:
   ` + "`<img src=\"/attachments/pic.png\" alt=\"..\" width=\"320\" data-alignment=\"center\">`" + `
5. A note whose first block is raw HTML starts with ` + "`<!-- markdown -->`" + ` so it is not
   mistaken for legacy editor HTML.
6. Encoding is UTF-8 with a trailing newline. Empty daily and weekly notes are deleted.

## Example

` + "```" + `markdown
# Standup

- [x] review [[Project Alpha]]
- [ ] write the release notes

<img src="/attachments/board.png" alt="whiteboard" width="480">
` + "```" + `
`
