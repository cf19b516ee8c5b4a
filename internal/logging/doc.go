// Package logging implements gioimport.Logger.
//
// ConsoleLogger writes to stderr so that stdout stays reserved for the run
// summary; NullLogger discards everything.
package logging
