// Package todo parses and edits todo.txt task lines and keeps the list of
// tasks together with the dependency graph encoded in their id: and p:
// tags.
//
// A task line has an optional head followed by free text:
//
//	x 2024-01-05 2024-01-01 Write report +work @office due:2024-01-10
//	(A) 2024-01-01 Call mom @phone
//
// The head is either a completion marker ("x" and a completion date,
// optionally followed by a creation date) or an optional priority "(A)"
// followed by an optional creation date. In the text, +name marks a
// project, @name a context and key:value a tag. Projects and contexts stay
// part of the text; tags do not.
//
// # Dependencies
//
// A task that others depend on carries id:N. Each dependent carries p:N.
// The tags are the stored form of the graph; List derives the graph from
// them and keeps both in step when dependencies are added or removed.
//
// # Dates
//
// All dates are calendar days at midnight UTC. Today is derived from the
// package variable Now, which tests may replace.
package todo
