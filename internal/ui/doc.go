// Package ui implements an interactive report browser using bubbletea's Elm architecture.
//
// The TUI walks through a report run:
//  1. [RunView] : progress bar fed by the pipeline's progress channel
//  2. [ReportView] : ranked recordings in a filterable list
//  3. [DetailView] : listen count, duration and MBID of one entry
//  4. [ExcludedView] : skipped recordings and those without a MusicBrainz id
//
// The package also exposes the lipgloss palette used by the CLI's styled text output.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, x, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
