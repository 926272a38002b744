// Package memory provides in-memory implementations of the driven ports.
// They back dry runs, the memory vector provider and tests; nothing
// survives the process.
package memory
