// Package webnovel turns a web novel's index page into a locally persisted,
// ordered collection of chapters. It extracts chapter lists and bodies with
// user-authored selector rules, strips boilerplate from the text, and drives
// a concurrent, cancellable, resumable download.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, resty/).
package webnovel
