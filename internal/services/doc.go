// Package services wires the import pipeline to a database connection.
//
// ImportService validates an ImportConfig, opens a pool through the
// connector matching the configured authentication method and runs
// importer.Service either statement by statement or inside one transaction.
package services
