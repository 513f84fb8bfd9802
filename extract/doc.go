// Package extract turns a parsed PDF into the structural element model:
// it replays each page's content stream through a text-state machine,
// assembles the resulting show-text fragments into block/line/word
// structure in reading order, places image XObjects from their first use,
// and derives the document-wide font and color summaries.
package extract
