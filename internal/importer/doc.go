// Package importer materializes a GIO document into the bzk schema.
//
// A run resolves the regulation-version chain first, then extracts the
// document, writes or reuses one geometry and one leaf location per
// geo:Locatie, creates the group location with its memberships and
// finally writes the informatieobjectversie row. Statements are issued
// strictly in that order through a gioimport.Store; whether they share a
// transaction is the caller's choice.
package importer
