// Package s3 stores mesh snapshots in Amazon S3 and keeps a DynamoDB
// catalog of published snapshot versions.
//
// Store is a plain snapshot.Store. Catalog layers version numbers on top of
// any snapshot.Store: publishing writes the archive first and then claims
// the next version with a conditional DynamoDB write, so two writers racing
// for the same version cannot both win.
package s3
